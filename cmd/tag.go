package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/jamo/dive-tagger/internal/database"
	"github.com/jamo/dive-tagger/internal/logging"
	"github.com/jamo/dive-tagger/internal/media"
	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/processor"
	"github.com/jamo/dive-tagger/internal/prompt"
	"github.com/jamo/dive-tagger/internal/runner"
)

var (
	policyName      string
	rememberChoices bool
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Match media to dives and write dive site GPS and keywords",
	Long: `Matches every photo and video in the input directory against the dives in a
Subsurface log and writes the matched dive site:
  - GPS coordinates embedded with exiftool
  - the site name as a keyword in an XMP sidecar

Photos with no timestamp, or with no dive within two hours of its start, are
skipped. When several dives match equally well the --policy decides:
interactive (ask), earliest (first dive), or skip.`,
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)

	tagCmd.Flags().StringVarP(&subsurfacePath, "subsurface", "s", "", "Subsurface dive log (.ssrf or .xml)")
	tagCmd.Flags().StringVarP(&mediaDir, "input", "i", "", "Directory containing photos and videos")
	tagCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories")
	tagCmd.Flags().StringSliceVarP(&excludeFolders, "exclude", "e", []string{}, "Folder name to skip while scanning. Can be specified multiple times.")
	tagCmd.Flags().StringVar(&policyName, "policy", "", "How to resolve ambiguous matches: interactive, earliest or skip (default from config)")
	tagCmd.Flags().BoolVar(&rememberChoices, "remember", false, "Reuse an answer for photos tied between the same dives")
}

func runTag(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	name := strings.ToLower(strings.TrimSpace(policyName))
	if name == "" {
		name = cfg.Resolution.Policy
	}
	if err := processor.CheckPolicyName(name); err != nil {
		return err
	}
	if name == processor.PolicyInteractive && !stdinIsTerminal(cmd) {
		return fmt.Errorf("interactive resolution needs a terminal on stdin; use --policy earliest or --policy skip")
	}

	book, loc, err := loadLogbook(out)
	if err != nil {
		return err
	}
	if len(book.Dives) == 0 {
		return errNoDives
	}

	lock, err := acquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Unlock()

	paths, err := scanMedia(out)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No supported media files found.")
		return nil
	}

	policy, err := buildPolicy(name, cmd.InOrStdin(), out, book)
	if err != nil {
		return err
	}
	if rememberChoices || cfg.Resolution.RememberChoices {
		policy = processor.Remember(policy)
	}

	db, err := database.Open(cfg.Paths.JournalDB)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer db.Close()

	run := models.RunRecord{
		DiveLog:  absPath(subsurfacePath),
		MediaDir: absPath(mediaDir),
		Policy:   name,
		DryRun:   dryRun,
	}
	if err := db.StartRun(&run); err != nil {
		return err
	}
	runLogger := logger.With(logging.String(logging.FieldRunID, run.ID))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tool := exiftool()
	if !tool.Available() {
		runLogger.Warn("exiftool not found; RAW/video timestamps cannot be read and GPS is written to sidecars only",
			logging.String("binary", cfg.Exiftool.Binary))
	}
	reader := media.NewReader(tool, loc, runLogger)
	writer := media.NewWriter(tool, media.WriterOptions{
		EmbedGPS:   cfg.Writer.EmbedGPS,
		XMPSidecar: cfg.Writer.XMPSidecar,
	}, runLogger)
	matcher := processor.NewMatcher(book, policy, runLogger)

	if dryRun {
		fmt.Fprintln(out, "\nDRY RUN - no files will be modified")
	}
	fmt.Fprintf(out, "\nProcessing %d files (run %s)...\n", len(paths), shortID(run.ID))

	r := runner.New(book, matcher, reader, writer, runner.Options{
		DryRun:    dryRun,
		Verbose:   verbose,
		OnOutcome: func(o runner.Outcome) { printOutcome(out, o) },
	}, runLogger)
	report, runErr := r.Run(ctx, paths)

	report.Summarize(&run)
	if err := db.StoreDecisions(run.ID, report.DecisionRecords(run.ID)); err != nil {
		runLogger.Error("failed to journal decisions", logging.Error(err))
	}
	if err := db.FinishRun(&run); err != nil {
		runLogger.Error("failed to journal run", logging.Error(err))
	}

	printSummary(out, report, len(paths))
	printCameraWarnings(out, book, processor.CameraTagWarnings(book.Dives, report.MatchedDives, report.PhotoTimes))

	if runErr != nil {
		if errors.Is(runErr, prompt.ErrAborted) || errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted after %d of %d files; already written files were kept", report.Total, len(paths))
		}
		return fmt.Errorf("run stopped: %w", runErr)
	}
	if report.WriteErrors > 0 {
		return fmt.Errorf("%d files could not be written", report.WriteErrors)
	}
	return nil
}

func buildPolicy(name string, in io.Reader, out io.Writer, book models.Logbook) (processor.ResolutionPolicy, error) {
	if name == processor.PolicyInteractive {
		return prompt.New(in, out, book), nil
	}
	return processor.HeadlessPolicy(name)
}

func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another dive-tagger run is using %s", path)
	}
	return lock, nil
}

func printOutcome(out io.Writer, o runner.Outcome) {
	d := o.Decision
	file := baseName(d.Photo.Path)
	switch o.Status {
	case runner.StatusUpdated:
		fmt.Fprintf(out, "  ✓ %s → Dive #%d %s (%s)\n", file, d.DiveNumber, o.Site.Name, d.Confidence)
	case runner.StatusWouldUpdate:
		fmt.Fprintf(out, "  ~ %s → Dive #%d %s (%s) [%s]\n", file, d.DiveNumber, o.Site.Name, d.Confidence, formatGPS(o.Site))
	case runner.StatusUnchanged:
		fmt.Fprintf(out, "  = %s already tagged with %s\n", file, o.Site.Name)
	case runner.StatusError:
		fmt.Fprintf(out, "  ✗ %s → Dive #%d: %v\n", file, d.DiveNumber, o.WriteErr)
	default:
		fmt.Fprintf(out, "  - %s skipped (%s)\n", file, d.Reason)
	}
}

func printSummary(out io.Writer, report runner.Report, total int) {
	rows := [][]string{
		{"Files found", strconv.Itoa(total)},
		{"Processed", strconv.Itoa(report.Total)},
		{"Matched", strconv.Itoa(report.Matched)},
		{"  updated", strconv.Itoa(report.Updated)},
		{"  would update", strconv.Itoa(report.WouldUpdate)},
		{"  unchanged", strconv.Itoa(report.Unchanged)},
		{"  write errors", strconv.Itoa(report.WriteErrors)},
		{"Skipped", strconv.Itoa(report.Skipped)},
		{"  no timestamp", strconv.Itoa(report.SkippedBy[models.SkipNoTimestamp])},
		{"  no matching dive", strconv.Itoa(report.SkippedBy[models.SkipNoCandidates])},
		{"  skipped by choice", strconv.Itoa(report.SkippedBy[models.SkipUserSkipped])},
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Summary", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))

	if dives := report.DiveNumbers(); len(dives) > 0 {
		parts := make([]string, len(dives))
		for i, n := range dives {
			parts[i] = "#" + strconv.Itoa(n)
		}
		fmt.Fprintf(out, "Dives with photos: %s\n", strings.Join(parts, ", "))
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
