package processor

import (
	"math"

	"github.com/jamo/dive-tagger/internal/models"
)

const (
	EarthRadiusKM = 6371.0 // Earth radius in kilometers
	// SamePositionKM is how close embedded GPS must be to a site to count as
	// already tagged. EXIF rationals do not round-trip exactly.
	SamePositionKM = 0.001
)

// CalculateDistance returns distance in kilometers between two GPS coordinates
// Using the Haversine formula
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// AtSite reports whether lat/lon lies within SamePositionKM of the site.
// Unlocated sites never match.
func AtSite(lat, lon float64, site models.DiveSite) bool {
	siteLat, siteLon, ok := site.Coordinates()
	if !ok {
		return false
	}
	return CalculateDistance(lat, lon, siteLat, siteLon) <= SamePositionKM
}
