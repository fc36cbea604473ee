package features

import (
	"time"
	_ "time/tzdata" // the encoder must work on hosts without a zoneinfo database

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/taxifare/data"
	"github.com/YuminosukeSato/taxifare/pkg/errors"
)

// DefaultTimezone is the zone calendar features are computed in.
const DefaultTimezone = "America/New_York"

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 MST",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a pickup timestamp. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// TimeFeaturesEncoder decomposes the pickup timestamp into day of week
// (Monday=0), hour, month and year in a fixed time zone.
type TimeFeaturesEncoder struct {
	loc *time.Location
}

// NewTimeFeaturesEncoder returns an encoder for loc. A nil loc selects
// DefaultTimezone.
func NewTimeFeaturesEncoder(loc *time.Location) (*TimeFeaturesEncoder, error) {
	if loc == nil {
		var err error
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return nil, errors.Wrapf(err, "load time zone %s", DefaultTimezone)
		}
	}
	return &TimeFeaturesEncoder{loc: loc}, nil
}

// Name returns "time".
func (e *TimeFeaturesEncoder) Name() string {
	return "time"
}

// Columns returns the output column names.
func (e *TimeFeaturesEncoder) Columns() []string {
	return []string{"dow", "hour", "month", "year"}
}

// Location returns the zone features are computed in.
func (e *TimeFeaturesEncoder) Location() *time.Location {
	return e.loc
}

// Fit is a no-op.
func (e *TimeFeaturesEncoder) Fit(_ []data.Trip) error {
	return nil
}

// Transform returns an n×4 matrix [dow, hour, month, year]. The first
// timestamp that cannot be parsed aborts with a ParseError.
func (e *TimeFeaturesEncoder) Transform(trips []data.Trip) (*mat.Dense, error) {
	if len(trips) == 0 {
		return nil, errors.NewModelError("TimeFeaturesEncoder.Transform", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(trips), 4, nil)
	for i, t := range trips {
		ts, err := ParseTimestamp(t.PickupDatetime)
		if err != nil {
			return nil, errors.NewParseError("TimeFeaturesEncoder.Transform", data.ColPickupDatetime, i, t.PickupDatetime, err)
		}
		ts = ts.In(e.loc)

		out.Set(i, 0, float64((ts.Weekday()+6)%7))
		out.Set(i, 1, float64(ts.Hour()))
		out.Set(i, 2, float64(ts.Month()))
		out.Set(i, 3, float64(ts.Year()))
	}
	return out, nil
}
