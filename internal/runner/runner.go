package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jamo/dive-tagger/internal/logging"
	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/processor"
)

// PhotoSource reads metadata already present in media files.
type PhotoSource interface {
	CaptureTime(ctx context.Context, path string) (time.Time, bool)
	CurrentGPS(ctx context.Context, path string) (lat, lon float64, ok bool)
}

// MetadataWriter applies a matched site to a media file.
type MetadataWriter interface {
	Apply(ctx context.Context, path string, site models.DiveSite, taken *time.Time) error
}

// Options are the per-run switches.
type Options struct {
	DryRun  bool
	Verbose bool
	// OnOutcome, when set, is called after each photo is handled.
	OnOutcome func(Outcome)
}

// Runner drives matching and writing over a list of media files.
type Runner struct {
	logbook models.Logbook
	matcher *processor.Matcher
	source  PhotoSource
	writer  MetadataWriter
	opts    Options
	logger  *slog.Logger
}

// New builds a Runner. writer may be nil for dry runs.
func New(logbook models.Logbook, matcher *processor.Matcher, source PhotoSource, writer MetadataWriter, opts Options, logger *slog.Logger) *Runner {
	return &Runner{
		logbook: logbook,
		matcher: matcher,
		source:  source,
		writer:  writer,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "runner"),
	}
}

// Run processes paths in lexicographic order. Write failures are recorded
// on the outcome and the run continues. Cancellation or a resolution error
// stops the run; the report covers the photos handled so far and nothing
// already written is undone.
func (r *Runner) Run(ctx context.Context, paths []string) (Report, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	report := newReport()
	for _, path := range sorted {
		if err := ctx.Err(); err != nil {
			report.Interrupted = true
			return report, err
		}

		photo := models.Photo{Path: path}
		if t, ok := r.source.CaptureTime(ctx, path); ok {
			photo.Taken = &t
			report.PhotoTimes = append(report.PhotoTimes, t)
		}

		decision, err := r.matcher.Decide(ctx, photo)
		if err != nil {
			report.Interrupted = true
			return report, fmt.Errorf("resolve %s: %w", path, err)
		}

		outcome := r.apply(ctx, decision)
		report.add(outcome)
		r.logOutcome(outcome)
		if r.opts.OnOutcome != nil {
			r.opts.OnOutcome(outcome)
		}
	}
	return report, nil
}

func (r *Runner) apply(ctx context.Context, decision models.Decision) Outcome {
	outcome := Outcome{Decision: decision, Status: StatusSkipped}
	if !decision.IsMatched() {
		return outcome
	}

	site, _ := r.logbook.SiteFor(decision.Dive)
	outcome.Site = site

	if r.alreadyTagged(ctx, decision.Photo.Path, site) {
		outcome.Status = StatusUnchanged
		return outcome
	}
	if r.opts.DryRun || r.writer == nil {
		outcome.Status = StatusWouldUpdate
		return outcome
	}
	if err := r.writer.Apply(ctx, decision.Photo.Path, site, decision.Photo.Taken); err != nil {
		outcome.Status = StatusError
		outcome.WriteErr = err
		return outcome
	}
	outcome.Status = StatusUpdated
	return outcome
}

func (r *Runner) alreadyTagged(ctx context.Context, path string, site models.DiveSite) bool {
	if !site.Located() {
		return false
	}
	lat, lon, ok := r.source.CurrentGPS(ctx, path)
	return ok && processor.AtSite(lat, lon, site)
}

func (r *Runner) logOutcome(o Outcome) {
	level := slog.LevelDebug
	if r.opts.Verbose {
		level = slog.LevelInfo
	}
	attrs := []slog.Attr{
		logging.String(logging.FieldPhoto, o.Decision.Photo.Path),
		logging.String("status", string(o.Status)),
	}
	if o.Decision.IsMatched() {
		attrs = append(attrs,
			logging.Int(logging.FieldDive, o.Decision.DiveNumber),
			logging.String("site", o.Site.Name),
			logging.String("confidence", o.Decision.Confidence.String()))
	} else {
		attrs = append(attrs, logging.String("reason", string(o.Decision.Reason)))
	}
	if o.WriteErr != nil {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "write failed", append(attrs, logging.Error(o.WriteErr))...)
		return
	}
	r.logger.LogAttrs(context.Background(), level, "photo processed", attrs...)
}
