// Package data loads raw taxi trips, removes invalid rows and converts the
// result into typed trips for the feature encoders.
package data

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/taxifare/pkg/errors"
)

// Column names of the raw trip schema.
const (
	ColKey              = "key"
	ColFareAmount       = "fare_amount"
	ColPickupDatetime   = "pickup_datetime"
	ColPickupLongitude  = "pickup_longitude"
	ColPickupLatitude   = "pickup_latitude"
	ColDropoffLongitude = "dropoff_longitude"
	ColDropoffLatitude  = "dropoff_latitude"
	ColPassengerCount   = "passenger_count"
)

// DefaultMaxRows is the number of data rows read when no limit is given.
const DefaultMaxRows = 10000

// schema はCSV読み込み時に明示する列の型
var schema = map[string]series.Type{
	ColKey:              series.String,
	ColFareAmount:       series.Float,
	ColPickupDatetime:   series.String,
	ColPickupLongitude:  series.Float,
	ColPickupLatitude:   series.Float,
	ColDropoffLongitude: series.Float,
	ColDropoffLatitude:  series.Float,
	ColPassengerCount:   series.Int,
}

// naValues are the cell values read as missing.
var naValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// requiredColumns are the columns the cleaning step and the encoders read.
// key is optional.
var requiredColumns = []string{
	ColFareAmount,
	ColPickupDatetime,
	ColPickupLongitude,
	ColPickupLatitude,
	ColDropoffLongitude,
	ColDropoffLatitude,
	ColPassengerCount,
}

type loadConfig struct {
	maxRows int
	client  *http.Client
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithMaxRows limits the number of data rows read. n <= 0 reads everything.
// Rows are CSV records, so a quoted field spanning several lines counts once.
func WithMaxRows(n int) LoadOption {
	return func(c *loadConfig) {
		c.maxRows = n
	}
}

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(client *http.Client) LoadOption {
	return func(c *loadConfig) {
		c.client = client
	}
}

// Load reads a CSV of taxi trips from a local path or an http(s) URL.
func Load(ctx context.Context, source string, opts ...LoadOption) (dataframe.DataFrame, error) {
	cfg := loadConfig{
		maxRows: DefaultMaxRows,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	rc, err := open(ctx, source, cfg.client)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer rc.Close()

	return readCSV(rc, cfg.maxRows)
}

func open(ctx context.Context, source string, client *http.Client) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "data.Load: build request for %s", source)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, "data.Load: fetch %s", source)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errors.Newf("data.Load: fetch %s: unexpected status %s", source, resp.Status)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrapf(err, "data.Load: open %s", source)
	}
	return f, nil
}

// readCSV parses at most maxRows data rows (plus the header) from r.
// A header without data rows yields an empty frame with the header's columns.
func readCSV(r io.Reader, maxRows int) (dataframe.DataFrame, error) {
	records, err := readRecords(r, maxRows)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, errors.NewValidationError("columns", "missing header", "")
	}

	var df dataframe.DataFrame
	if len(records) == 1 {
		df = emptyFrame(records[0])
	} else {
		df = dataframe.LoadRecords(records,
			dataframe.WithTypes(schema),
			dataframe.NaNValues(naValues),
		)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(df.Err, "data.Load: parse csv")
	}

	if err := checkColumns(df); err != nil {
		return dataframe.DataFrame{}, err
	}
	return df, nil
}

// readRecords はヘッダーと最大maxRows件のレコードを読み込む
func readRecords(r io.Reader, maxRows int) ([][]string, error) {
	cr := csv.NewReader(r)
	var records [][]string
	for maxRows <= 0 || len(records) < maxRows+1 {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "data.Load: parse csv")
		}
		records = append(records, rec)
	}
	return records, nil
}

// emptyFrame builds a zero-row frame typed by schema.
func emptyFrame(header []string) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(header))
	for _, name := range header {
		t, ok := schema[name]
		if !ok {
			t = series.String
		}
		var values interface{}
		switch t {
		case series.Float:
			values = []float64{}
		case series.Int:
			values = []int{}
		default:
			values = []string{}
		}
		cols = append(cols, series.New(values, t, name))
	}
	return dataframe.New(cols...)
}

func checkColumns(df dataframe.DataFrame) error {
	names := make(map[string]struct{}, df.Ncol())
	for _, name := range df.Names() {
		names[name] = struct{}{}
	}
	for _, col := range requiredColumns {
		if _, ok := names[col]; !ok {
			return errors.NewValidationError("columns", "missing required column", col)
		}
	}
	return nil
}
