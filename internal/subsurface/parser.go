package subsurface

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jamo/dive-tagger/internal/logging"
	"github.com/jamo/dive-tagger/internal/models"
)

// ErrInvalidDate marks a dive whose date attribute is missing or malformed.
var ErrInvalidDate = errors.New("invalid dive date")

type divelogXML struct {
	Sites     []siteXML `xml:"divesites>site"`
	RootDives []diveXML `xml:"dive"`
	Dives     struct {
		Dives []diveXML `xml:"dive"`
		Trips []struct {
			Dives []diveXML `xml:"dive"`
		} `xml:"trip"`
	} `xml:"dives"`
}

type siteXML struct {
	UUID string `xml:"uuid,attr"`
	Name string `xml:"name,attr"`
	GPS  string `xml:"gps,attr"`
}

type diveXML struct {
	Number     string `xml:"number,attr"`
	Date       string `xml:"date,attr"`
	Time       string `xml:"time,attr"`
	Duration   string `xml:"duration,attr"`
	DiveSiteID string `xml:"divesiteid,attr"`
	Tags       string `xml:"tags,attr"`
}

// ParseFile reads a Subsurface .ssrf/.xml log from disk.
func ParseFile(path string, loc *time.Location, logger *slog.Logger) (models.Logbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Logbook{}, fmt.Errorf("subsurface: open %s: %w", path, err)
	}
	defer f.Close()

	book, err := Parse(f, loc, logger)
	if err != nil {
		return models.Logbook{}, fmt.Errorf("subsurface: parse %s: %w", path, err)
	}
	return book, nil
}

// Parse decodes a Subsurface divelog document. Dives found directly under
// the root, under <dives> and inside <dives><trip> are flattened into one
// list ordered by start time. Dives with an unusable date are dropped and
// logged; malformed XML is an error.
func Parse(r io.Reader, loc *time.Location, logger *slog.Logger) (models.Logbook, error) {
	if loc == nil {
		loc = time.Local
	}
	logger = logging.NewComponentLogger(logger, "subsurface")

	var doc divelogXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return models.Logbook{}, fmt.Errorf("decode xml: %w", err)
	}

	book := models.Logbook{Sites: make(map[string]models.DiveSite, len(doc.Sites))}
	for _, s := range doc.Sites {
		site := models.DiveSite{
			ID:   strings.TrimSpace(s.UUID),
			Name: s.Name,
		}
		if lat, lon, ok := parseGPS(s.GPS); ok {
			site.Latitude = &lat
			site.Longitude = &lon
		} else if strings.TrimSpace(s.GPS) != "" {
			logger.Warn("ignoring invalid site coordinates",
				logging.String("site", site.Name),
				logging.String("gps", s.GPS))
		}
		book.Sites[site.ID] = site
	}

	raw := make([]diveXML, 0, len(doc.RootDives)+len(doc.Dives.Dives))
	raw = append(raw, doc.RootDives...)
	for _, trip := range doc.Dives.Trips {
		raw = append(raw, trip.Dives...)
	}
	raw = append(raw, doc.Dives.Dives...)

	for _, d := range raw {
		dive, err := parseDive(d, loc)
		if err != nil {
			logger.Warn("dropping dive",
				logging.String(logging.FieldDive, d.Number),
				logging.String("date", d.Date),
				logging.Error(err))
			continue
		}
		if _, ok := book.Sites[dive.SiteID]; !ok {
			if dive.SiteID == "" {
				dive.SiteID = fmt.Sprintf("unknown_%d", dive.Number)
			}
			book.Sites[dive.SiteID] = models.DiveSite{
				ID:   dive.SiteID,
				Name: fmt.Sprintf("Unknown Site %d", dive.Number),
			}
		}
		book.Dives = append(book.Dives, dive)
	}

	sort.SliceStable(book.Dives, func(i, j int) bool {
		a, b := book.Dives[i], book.Dives[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Number < b.Number
	})

	logger.Debug("parsed dive log",
		logging.Int("dives", len(book.Dives)),
		logging.Int("sites", len(book.Sites)))
	return book, nil
}

func parseDive(d diveXML, loc *time.Location) (models.Dive, error) {
	number := 0
	if s := strings.TrimSpace(d.Number); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return models.Dive{}, fmt.Errorf("invalid dive number %q", d.Number)
		}
		number = n
	}

	start, err := parseStart(d.Date, d.Time, loc)
	if err != nil {
		return models.Dive{}, err
	}

	return models.Dive{
		Number:   number,
		Start:    start,
		Duration: parseDuration(d.Duration),
		SiteID:   strings.TrimSpace(d.DiveSiteID),
		Tags:     parseTags(d.Tags),
	}, nil
}

// parseStart combines the date and time attributes. An unreadable time
// falls back to midnight; an unreadable date is an error.
func parseStart(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, ErrInvalidDate
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	clock = strings.TrimSpace(clock)
	if clock == "" {
		return day, nil
	}
	var layout string
	switch strings.Count(clock, ":") {
	case 2:
		layout = "15:04:05"
	case 1:
		layout = "15:04"
	default:
		layout = "15"
	}
	tod, err := time.Parse(layout, clock)
	if err != nil {
		return day, nil
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
}

// parseDuration accepts "MM:SS min", "H:MM:SS min" and bare minutes.
// Anything else yields zero.
func parseDuration(raw string) time.Duration {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "min"))
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		nums[i] = n
	}

	switch len(nums) {
	case 1:
		return time.Duration(nums[0]) * time.Minute
	case 2:
		return time.Duration(nums[0])*time.Minute + time.Duration(nums[1])*time.Second
	case 3:
		return time.Duration(nums[0])*time.Hour +
			time.Duration(nums[1])*time.Minute +
			time.Duration(nums[2])*time.Second
	default:
		return 0
	}
}

func parseTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseGPS reads Subsurface's "lat lon" decimal degree pair.
func parseGPS(raw string) (lat, lon float64, ok bool) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}
