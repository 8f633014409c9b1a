package models

import (
	"fmt"
	"time"
)

// DiveSite represents a named dive location from the dive log
type DiveSite struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Located reports whether the site carries a coordinate pair
func (s DiveSite) Located() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Coordinates returns the site position; ok is false for unlocated sites
func (s DiveSite) Coordinates() (lat, lon float64, ok bool) {
	if !s.Located() {
		return 0, 0, false
	}
	return *s.Latitude, *s.Longitude, true
}

// Dive represents a single logged dive
type Dive struct {
	Number   int           `json:"number"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
	SiteID   string        `json:"site_id"`
	Tags     []string      `json:"tags"`
}

// End is the derived end of the dive interval
func (d Dive) End() time.Time {
	return d.Start.Add(d.Duration)
}

// Key identifies the dive within one logbook. Numbers alone are not unique:
// unnumbered dives all parse as 0 and logs may repeat numbers.
func (d Dive) Key() string {
	return fmt.Sprintf("%d@%s@%s", d.Number, d.Start.UTC().Format(time.RFC3339Nano), d.SiteID)
}

// HasTag reports whether the dive carries the given Subsurface tag
func (d Dive) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Logbook is the normalized output of a dive log: dives ordered by start
// and the site table they reference by id.
type Logbook struct {
	Dives []Dive
	Sites map[string]DiveSite
}

// Site looks up a site by id
func (l Logbook) Site(id string) (DiveSite, bool) {
	site, ok := l.Sites[id]
	return site, ok
}

// SiteFor returns the site referenced by the dive
func (l Logbook) SiteFor(d Dive) (DiveSite, bool) {
	return l.Site(d.SiteID)
}

// Dive returns the first dive with the given number
func (l Logbook) Dive(number int) (Dive, bool) {
	for _, d := range l.Dives {
		if d.Number == number {
			return d, true
		}
	}
	return Dive{}, false
}

// Photo represents a media file and its capture time, if one could be read
type Photo struct {
	Path  string     `json:"path"`
	Taken *time.Time `json:"taken"`
}

// Confidence ranks how strongly a photo time relates to a dive.
// Larger values dominate smaller ones.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceNearDive
	ConfidenceWithinDive
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceWithinDive:
		return "within_dive"
	case ConfidenceNearDive:
		return "near_dive"
	default:
		return "none"
	}
}

// Candidate is a provisional association between a photo and a dive
type Candidate struct {
	PhotoPath  string
	Dive       Dive
	Confidence Confidence
}

// SkipReason explains why a photo was not matched
type SkipReason string

const (
	SkipNoTimestamp  SkipReason = "no-timestamp"
	SkipNoCandidates SkipReason = "no-candidates"
	SkipUserSkipped  SkipReason = "user-skipped"
)

// Outcome is the kind of a decision
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeSkipped Outcome = "skipped"
)

// Decision is the terminal per-photo result of matching
type Decision struct {
	Photo      Photo
	Outcome    Outcome
	Dive       Dive
	DiveNumber int
	Confidence Confidence
	Reason     SkipReason
	Candidates []Candidate
}

// Matched builds a matched decision
func Matched(photo Photo, dive Dive, confidence Confidence, candidates []Candidate) Decision {
	return Decision{
		Photo:      photo,
		Outcome:    OutcomeMatched,
		Dive:       dive,
		DiveNumber: dive.Number,
		Confidence: confidence,
		Candidates: candidates,
	}
}

// Skipped builds a skipped decision
func Skipped(photo Photo, reason SkipReason, candidates []Candidate) Decision {
	return Decision{
		Photo:      photo,
		Outcome:    OutcomeSkipped,
		Reason:     reason,
		Candidates: candidates,
	}
}

// IsMatched reports whether the decision assigned a dive
func (d Decision) IsMatched() bool {
	return d.Outcome == OutcomeMatched
}

// RunRecord is a journaled tag run
type RunRecord struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DiveLog     string    `json:"dive_log"`
	MediaDir    string    `json:"media_dir"`
	Policy      string    `json:"policy"`
	DryRun      bool      `json:"dry_run"`
	Total       int       `json:"total"`
	Matched     int       `json:"matched"`
	Updated     int       `json:"updated"`
	Unchanged   int       `json:"unchanged"`
	Skipped     int       `json:"skipped"`
	WriteErrors int       `json:"write_errors"`
	Interrupted bool      `json:"interrupted"`
}

// DecisionRecord is a journaled per-photo decision
type DecisionRecord struct {
	RunID      string `json:"run_id"`
	PhotoPath  string `json:"photo_path"`
	Outcome    string `json:"outcome"`
	DiveNumber int    `json:"dive_number"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	WriteError string `json:"write_error"`
	Candidates []int  `json:"candidates"`
}
