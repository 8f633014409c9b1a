package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jamo/dive-tagger/internal/media"
	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/processor"
	"github.com/jamo/dive-tagger/internal/runner"
)

var analyzePolicy string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report how media would match dives without writing anything",
	Long: `Runs the matcher over the input directory and prints the decision for every
file with its candidate dives, followed by camera tag warnings: dives that
received photos but lack the "camera" tag, and dives tagged "camera" that
received none. Never prompts and never modifies files.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&subsurfacePath, "subsurface", "s", "", "Subsurface dive log (.ssrf or .xml)")
	analyzeCmd.Flags().StringVarP(&mediaDir, "input", "i", "", "Directory containing photos and videos")
	analyzeCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories")
	analyzeCmd.Flags().StringSliceVarP(&excludeFolders, "exclude", "e", []string{}, "Folder name to skip while scanning. Can be specified multiple times.")
	analyzeCmd.Flags().StringVar(&analyzePolicy, "policy", processor.PolicySkip, "Headless resolution for ambiguous matches: earliest or skip")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	policy, err := processor.HeadlessPolicy(analyzePolicy)
	if err != nil {
		return err
	}

	book, loc, err := loadLogbook(out)
	if err != nil {
		return err
	}
	if len(book.Dives) == 0 {
		return errNoDives
	}
	paths, err := scanMedia(out)
	if err != nil {
		return err
	}

	reader := media.NewReader(exiftool(), loc, logger)
	matcher := processor.NewMatcher(book, policy, logger)
	r := runner.New(book, matcher, reader, nil, runner.Options{DryRun: true, Verbose: verbose}, logger)

	report, err := r.Run(cmd.Context(), paths)
	if err != nil {
		return fmt.Errorf("analysis stopped: %w", err)
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		d := o.Decision
		dive, result := "-", string(d.Reason)
		if d.IsMatched() {
			dive = "#" + strconv.Itoa(d.DiveNumber) + " " + o.Site.Name
			result = d.Confidence.String()
		}
		rows = append(rows, []string{
			baseName(d.Photo.Path),
			formatTaken(d.Photo),
			dive,
			result,
			formatCandidates(d.Candidates),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"File", "Taken", "Dive", "Result", "Candidates"}, rows, nil))

	fmt.Fprintf(out, "\nMatched %d of %d files", report.Matched, report.Total)
	if n := report.SkippedBy[models.SkipNoTimestamp]; n > 0 {
		fmt.Fprintf(out, ", %d without timestamp", n)
	}
	fmt.Fprintln(out)

	printCameraWarnings(out, book, processor.CameraTagWarnings(book.Dives, report.MatchedDives, report.PhotoTimes))
	return nil
}
