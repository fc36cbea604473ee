// Package features turns raw trips into numeric feature columns.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/taxifare/data"
	"github.com/YuminosukeSato/taxifare/pkg/errors"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two
// points given in degrees.
func Haversine(latFrom, lonFrom, latTo, lonTo float64) float64 {
	deltaLat := (latTo - latFrom) * (math.Pi / 180)
	deltaLon := (lonTo - lonFrom) * (math.Pi / 180)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(latFrom*(math.Pi/180))*math.Cos(latTo*(math.Pi/180))*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceTransformer emits the pickup-to-dropoff haversine distance.
// It has nothing to learn.
type DistanceTransformer struct{}

// NewDistanceTransformer returns a DistanceTransformer.
func NewDistanceTransformer() *DistanceTransformer {
	return &DistanceTransformer{}
}

// Name returns "distance".
func (d *DistanceTransformer) Name() string {
	return "distance"
}

// Columns returns the output column names.
func (d *DistanceTransformer) Columns() []string {
	return []string{"distance"}
}

// Fit is a no-op.
func (d *DistanceTransformer) Fit(_ []data.Trip) error {
	return nil
}

// Transform returns an n×1 matrix of distances in kilometres.
func (d *DistanceTransformer) Transform(trips []data.Trip) (*mat.Dense, error) {
	if len(trips) == 0 {
		return nil, errors.NewModelError("DistanceTransformer.Transform", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(trips), 1, nil)
	for i, t := range trips {
		for _, v := range [...]float64{t.PickupLatitude, t.PickupLongitude, t.DropoffLatitude, t.DropoffLongitude} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				msg := fmt.Sprintf("non-finite coordinate in row %d", i)
				if t.Key != "" {
					msg += fmt.Sprintf(" (key %q)", t.Key)
				}
				return nil, errors.NewValueError("DistanceTransformer.Transform", msg)
			}
		}
		out.Set(i, 0, Haversine(t.PickupLatitude, t.PickupLongitude, t.DropoffLatitude, t.DropoffLongitude))
	}
	return out, nil
}
