package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jamo/dive-tagger/internal/models"
)

// Resolution is the answer to an ambiguous match: a chosen dive or a skip
type Resolution struct {
	DiveNumber int
	DiveKey    string
	Skip       bool
}

// Choose selects one of the tied dives
func Choose(dive models.Dive) Resolution {
	return Resolution{DiveNumber: dive.Number, DiveKey: dive.Key()}
}

// SkipChoice leaves the photo unmatched
func SkipChoice() Resolution {
	return Resolution{Skip: true}
}

// ResolutionPolicy breaks ties between two or more same-tier candidates.
// tied is ordered by dive start, then dive number.
type ResolutionPolicy interface {
	Resolve(ctx context.Context, photo models.Photo, tied []models.Candidate) (Resolution, error)
}

// Policy names accepted on the command line and in config
const (
	PolicyInteractive = "interactive"
	PolicyEarliest    = "earliest"
	PolicySkip        = "skip"
)

// CheckPolicyName reports whether name is one of the known policies
func CheckPolicyName(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyInteractive, PolicyEarliest, PolicySkip:
		return nil
	}
	return fmt.Errorf("unknown resolution policy %q (want %s, %s or %s)", name, PolicyInteractive, PolicyEarliest, PolicySkip)
}

// EarliestPolicy picks the dive that started first
type EarliestPolicy struct{}

func (EarliestPolicy) Resolve(_ context.Context, _ models.Photo, tied []models.Candidate) (Resolution, error) {
	if len(tied) == 0 {
		return SkipChoice(), nil
	}
	return Choose(tied[0].Dive), nil
}

// SkipPolicy never picks a dive
type SkipPolicy struct{}

func (SkipPolicy) Resolve(context.Context, models.Photo, []models.Candidate) (Resolution, error) {
	return SkipChoice(), nil
}

// PolicyFunc adapts a function to ResolutionPolicy
type PolicyFunc func(ctx context.Context, photo models.Photo, tied []models.Candidate) (Resolution, error)

func (f PolicyFunc) Resolve(ctx context.Context, photo models.Photo, tied []models.Candidate) (Resolution, error) {
	return f(ctx, photo, tied)
}

// HeadlessPolicy returns the non-interactive policy with the given name
func HeadlessPolicy(name string) (ResolutionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyEarliest:
		return EarliestPolicy{}, nil
	case PolicySkip:
		return SkipPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown headless policy %q (want %s or %s)", name, PolicyEarliest, PolicySkip)
	}
}

// Remember wraps a policy so that an identical set of tied dives is only
// resolved once per run. Errors are not remembered.
func Remember(policy ResolutionPolicy) ResolutionPolicy {
	return &rememberingPolicy{
		next:    policy,
		choices: make(map[string]Resolution),
	}
}

type rememberingPolicy struct {
	next    ResolutionPolicy
	mu      sync.Mutex
	choices map[string]Resolution
}

func (p *rememberingPolicy) Resolve(ctx context.Context, photo models.Photo, tied []models.Candidate) (Resolution, error) {
	key := tiedKey(tied)

	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.choices[key]; ok {
		return r, nil
	}
	r, err := p.next.Resolve(ctx, photo, tied)
	if err != nil {
		return Resolution{}, err
	}
	p.choices[key] = r
	return r, nil
}

func tiedKey(tied []models.Candidate) string {
	parts := make([]string, len(tied))
	for i, c := range tied {
		parts[i] = c.Dive.Key()
	}
	return strings.Join(parts, "|")
}
