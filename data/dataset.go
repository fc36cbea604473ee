package data

import (
	"math"
	"math/rand/v2"

	"github.com/go-gota/gota/dataframe"

	"github.com/YuminosukeSato/taxifare/pkg/errors"
)

// Trip is one taxi ride without its fare.
type Trip struct {
	Key              string
	PickupDatetime   string
	PickupLatitude   float64
	PickupLongitude  float64
	DropoffLatitude  float64
	DropoffLongitude float64
	PassengerCount   int
}

// Dataset holds trips and their fares; Fares[i] belongs to Trips[i].
type Dataset struct {
	Trips []Trip
	Fares []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Trips)
}

// FromFrame converts a loaded (and usually cleaned) frame into a Dataset.
func FromFrame(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "data.FromFrame")
	}
	if err := checkColumns(df); err != nil {
		return nil, err
	}

	n := df.Nrow()
	ds := &Dataset{
		Trips: make([]Trip, n),
		Fares: df.Col(ColFareAmount).Float(),
	}
	if n == 0 {
		return ds, nil
	}

	passengers, err := df.Col(ColPassengerCount).Int()
	if err != nil {
		return nil, errors.Wrap(err, "data.FromFrame: passenger_count")
	}

	var keys []string
	for _, name := range df.Names() {
		if name == ColKey {
			keys = df.Col(ColKey).Records()
			break
		}
	}

	datetimes := df.Col(ColPickupDatetime).Records()
	pickupLat := df.Col(ColPickupLatitude).Float()
	pickupLon := df.Col(ColPickupLongitude).Float()
	dropoffLat := df.Col(ColDropoffLatitude).Float()
	dropoffLon := df.Col(ColDropoffLongitude).Float()

	for i := 0; i < n; i++ {
		t := Trip{
			PickupDatetime:   datetimes[i],
			PickupLatitude:   pickupLat[i],
			PickupLongitude:  pickupLon[i],
			DropoffLatitude:  dropoffLat[i],
			DropoffLongitude: dropoffLon[i],
			PassengerCount:   passengers[i],
		}
		if keys != nil {
			t.Key = keys[i]
		}
		ds.Trips[i] = t
	}
	return ds, nil
}

// Subset returns the rows at idx in that order.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{
		Trips: make([]Trip, len(idx)),
		Fares: make([]float64, len(idx)),
	}
	for k, i := range idx {
		out.Trips[k] = d.Trips[i]
		out.Fares[k] = d.Fares[i]
	}
	return out
}

// Split shuffles the rows with a PCG source seeded by seed and holds out
// ceil(testSize*n) of them for testing. At least one row stays in train.
func (d *Dataset) Split(testSize float64, seed uint64) (train, test *Dataset, err error) {
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	if len(d.Trips) != len(d.Fares) {
		return nil, nil, errors.NewDimensionError("data.Split", len(d.Trips), len(d.Fares), 0)
	}

	n := d.Len()
	if n == 0 {
		return nil, nil, errors.NewModelError("data.Split", "empty data", errors.ErrEmptyData)
	}
	if n < 2 {
		return nil, nil, errors.NewValueError("data.Split", "need at least 2 rows to hold out a test set")
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest > n-1 {
		nTest = n - 1
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	return d.Subset(perm[nTest:]), d.Subset(perm[:nTest]), nil
}
