package processor_test

import (
	"math"
	"testing"

	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/processor"
)

func TestCalculateDistance(t *testing.T) {
	// One degree of latitude is roughly 111.2 km.
	got := processor.CalculateDistance(21.0, -71.0, 22.0, -71.0)
	if math.Abs(got-111.19) > 0.1 {
		t.Fatalf("distance = %.3f km", got)
	}
	if d := processor.CalculateDistance(21.5, -71.5, 21.5, -71.5); d != 0 {
		t.Fatalf("same point distance = %f", d)
	}
}

func TestAtSite(t *testing.T) {
	lat, lon := 21.123456, -71.987654
	site := models.DiveSite{ID: "a", Name: "Coral Garden", Latitude: &lat, Longitude: &lon}

	tests := []struct {
		name     string
		lat, lon float64
		site     models.DiveSite
		want     bool
	}{
		{"exact", lat, lon, site, true},
		{"rational rounding", 21.1234561, -71.9876539, site, true},
		{"neighbouring site", 21.124, -71.987654, site, false},
		{"unlocated site", lat, lon, models.DiveSite{ID: "b", Name: "Mystery"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processor.AtSite(tt.lat, tt.lon, tt.site); got != tt.want {
				t.Fatalf("AtSite = %v, want %v", got, tt.want)
			}
		})
	}
}
