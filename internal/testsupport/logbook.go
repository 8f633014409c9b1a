package testsupport

import (
	"time"

	"github.com/jamo/dive-tagger/internal/models"
)

// Day is the calendar day fixtures are placed on.
var Day = time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)

// At returns Day at the given "15:04" or "15:04:05" clock time.
func At(clock string) time.Time {
	layout := "15:04"
	if len(clock) > 5 {
		layout = "15:04:05"
	}
	tod, err := time.Parse(layout, clock)
	if err != nil {
		panic(err)
	}
	return Day.Add(time.Duration(tod.Hour())*time.Hour +
		time.Duration(tod.Minute())*time.Minute +
		time.Duration(tod.Second())*time.Second)
}

// LocatedSite returns a site with coordinates.
func LocatedSite(id, name string, lat, lon float64) models.DiveSite {
	return models.DiveSite{ID: id, Name: name, Latitude: &lat, Longitude: &lon}
}

// NewLogbook assembles a logbook from sites and dives.
func NewLogbook(sites []models.DiveSite, dives ...models.Dive) models.Logbook {
	book := models.Logbook{Sites: make(map[string]models.DiveSite, len(sites)), Dives: dives}
	for _, s := range sites {
		book.Sites[s.ID] = s
	}
	return book
}

// NewDive builds a dive starting at the given clock time on Day.
func NewDive(number int, clock string, minutes int, siteID string, tags ...string) models.Dive {
	return models.Dive{
		Number:   number,
		Start:    At(clock),
		Duration: time.Duration(minutes) * time.Minute,
		SiteID:   siteID,
		Tags:     tags,
	}
}
