package geo

import (
	"math"

	"github.com/mr1hm/go-emergency-assist/internal/models"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle (haversine) distance between a and b.
func DistanceKm(a, b models.Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)

	// rounding can push h past 1 for near-antipodal points
	h = math.Min(h, 1)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundKm rounds a distance to one decimal place for display.
func RoundKm(d float64) float64 {
	return math.Round(d*10) / 10
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
