package runner

import (
	"sort"
	"time"

	"github.com/jamo/dive-tagger/internal/models"
)

// Status is what happened to a photo's files.
type Status string

const (
	StatusUpdated     Status = "updated"
	StatusWouldUpdate Status = "would-update"
	StatusUnchanged   Status = "unchanged"
	StatusSkipped     Status = "skipped"
	StatusError       Status = "error"
)

// Outcome pairs a decision with the result of applying it.
type Outcome struct {
	Decision models.Decision
	Site     models.DiveSite
	Status   Status
	WriteErr error
}

// Report aggregates the outcomes of one run.
type Report struct {
	Outcomes     []Outcome
	Total        int
	Matched      int
	Updated      int
	WouldUpdate  int
	Unchanged    int
	Skipped      int
	WriteErrors  int
	SkippedBy    map[models.SkipReason]int
	MatchedDives map[string]models.Dive
	PhotoTimes   []time.Time
	Interrupted  bool
}

func newReport() Report {
	return Report{
		SkippedBy:    make(map[models.SkipReason]int),
		MatchedDives: make(map[string]models.Dive),
	}
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++

	if o.Decision.IsMatched() {
		r.Matched++
		r.MatchedDives[o.Decision.Dive.Key()] = o.Decision.Dive
	} else {
		r.Skipped++
		r.SkippedBy[o.Decision.Reason]++
	}

	switch o.Status {
	case StatusUpdated:
		r.Updated++
	case StatusWouldUpdate:
		r.WouldUpdate++
	case StatusUnchanged:
		r.Unchanged++
	case StatusError:
		r.WriteErrors++
	}
}

// DiveNumbers returns the numbers of the matched dives in ascending order.
func (r Report) DiveNumbers() []int {
	seen := make(map[int]bool, len(r.MatchedDives))
	out := make([]int, 0, len(r.MatchedDives))
	for _, d := range r.MatchedDives {
		if !seen[d.Number] {
			seen[d.Number] = true
			out = append(out, d.Number)
		}
	}
	sort.Ints(out)
	return out
}

// Decisions returns the decision sequence in processing order.
func (r Report) Decisions() []models.Decision {
	out := make([]models.Decision, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Decision
	}
	return out
}
