package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jamo/dive-tagger/internal/logging"
	"github.com/jamo/dive-tagger/internal/models"
)

// NearWindow is how far from a dive's start a photo may be taken and still
// count as NEAR_DIVE. The window is anchored on the start only, never on the
// dive end: a photo three hours after a 90 minute dive started is not a
// candidate even though it is only 90 minutes past the end.
const NearWindow = 2 * time.Hour

// ErrUnknownChoice is returned when a resolution policy picks a dive that was
// not among the tied candidates.
var ErrUnknownChoice = errors.New("resolution chose a dive that was not offered")

// Classify relates a photo time to one dive
func Classify(t time.Time, dive models.Dive) models.Confidence {
	start := dive.Start
	end := dive.End()

	if !t.Before(start) && !t.After(end) {
		return models.ConfidenceWithinDive
	}

	if !t.Before(start.Add(-NearWindow)) && !t.After(start.Add(NearWindow)) {
		return models.ConfidenceNearDive
	}

	return models.ConfidenceNone
}

// BuildCandidates classifies the photo time against every dive with a located
// site. Dives without coordinates are never candidates since a match without
// GPS has nothing to write.
func BuildCandidates(photo models.Photo, logbook models.Logbook) []models.Candidate {
	if photo.Taken == nil {
		return nil
	}

	var candidates []models.Candidate
	for _, dive := range logbook.Dives {
		site, ok := logbook.SiteFor(dive)
		if !ok || !site.Located() {
			continue
		}
		confidence := Classify(*photo.Taken, dive)
		if confidence == models.ConfidenceNone {
			continue
		}
		candidates = append(candidates, models.Candidate{
			PhotoPath:  photo.Path,
			Dive:       dive,
			Confidence: confidence,
		})
	}
	return candidates
}

// TopTier keeps only the candidates of the highest confidence present,
// ordered by dive start then dive number.
func TopTier(candidates []models.Candidate) ([]models.Candidate, models.Confidence) {
	best := models.ConfidenceNone
	for _, c := range candidates {
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	if best == models.ConfidenceNone {
		return nil, best
	}

	tier := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence == best {
			tier = append(tier, c)
		}
	}
	sortCandidates(tier)
	return tier, best
}

func sortCandidates(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Dive, candidates[j].Dive
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Number < b.Number
	})
}

// Matcher turns photos into decisions against one logbook
type Matcher struct {
	logbook models.Logbook
	policy  ResolutionPolicy
	logger  *slog.Logger
}

// NewMatcher builds a matcher. The policy is consulted only for ambiguous
// photos; a nil policy skips them.
func NewMatcher(logbook models.Logbook, policy ResolutionPolicy, logger *slog.Logger) *Matcher {
	if policy == nil {
		policy = SkipPolicy{}
	}
	return &Matcher{
		logbook: logbook,
		policy:  policy,
		logger:  logging.NewComponentLogger(logger, "matcher"),
	}
}

// Decide produces the decision for one photo. Missing data always yields a
// skipped decision; the only errors come from the resolution policy.
func (m *Matcher) Decide(ctx context.Context, photo models.Photo) (models.Decision, error) {
	if photo.Taken == nil {
		return models.Skipped(photo, models.SkipNoTimestamp, nil), nil
	}

	candidates := BuildCandidates(photo, m.logbook)
	sortCandidates(candidates)
	for _, c := range candidates {
		m.logger.Debug("candidate",
			logging.String(logging.FieldPhoto, photo.Path),
			logging.Int(logging.FieldDive, c.Dive.Number),
			logging.String("confidence", c.Confidence.String()),
			logging.Duration("offset", photo.Taken.Sub(c.Dive.Start)),
		)
	}

	tier, confidence := TopTier(candidates)
	switch len(tier) {
	case 0:
		return models.Skipped(photo, models.SkipNoCandidates, candidates), nil
	case 1:
		return models.Matched(photo, tier[0].Dive, confidence, candidates), nil
	}

	resolution, err := m.policy.Resolve(ctx, photo, tier)
	if err != nil {
		return models.Decision{}, err
	}
	if resolution.Skip {
		return models.Skipped(photo, models.SkipUserSkipped, candidates), nil
	}
	for _, c := range tier {
		if c.Dive.Key() == resolution.DiveKey {
			return models.Matched(photo, c.Dive, confidence, candidates), nil
		}
	}
	return models.Decision{}, fmt.Errorf("%w: dive %d for %s", ErrUnknownChoice, resolution.DiveNumber, photo.Path)
}
