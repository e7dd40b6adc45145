// Package geo computes trip distances.
package geo

import (
	"math"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// DefaultRoadFactor approximates road distance from straight-line
// distance. 1.0 disables the correction.
const DefaultRoadFactor = 1.25

// Haversine returns the great-circle distance between a and b in km.
func Haversine(a, b model.Coords) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(math.Min(1, h)))
}

// Policy turns coordinates into a leg distance.
type Policy struct {
	// RoadFactor multiplies the straight-line distance. Zero means 1.
	RoadFactor float64
}

// Distance returns the policy distance in km, or 0 when either end is
// unknown. The value is unrounded; use RoundKm for display.
func (p Policy) Distance(a, b *model.Coords) float64 {
	if a == nil || b == nil {
		return 0
	}
	f := p.RoadFactor
	if f <= 0 {
		f = 1
	}
	return Haversine(*a, *b) * f
}

// RoundKm rounds km to two decimals.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
