package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamo/dive-tagger/internal/database"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show journaled tag runs, or the decisions of one run",
	Long: `Every tag run is recorded in the journal database together with the decision
made for each file. Without arguments this lists recent runs; with a run id
(or a unique prefix of one) it lists that run's decisions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	db, err := database.Open(cfg.Paths.JournalDB)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer db.Close()

	if len(args) == 1 {
		return showRun(cmd, db, args[0])
	}

	runs, err := db.GetRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to get runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		flags := []string{}
		if run.DryRun {
			flags = append(flags, "dry-run")
		}
		if run.Interrupted {
			flags = append(flags, "interrupted")
		}
		if run.FinishedAt.IsZero() {
			flags = append(flags, "unfinished")
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.MediaDir,
			run.Policy,
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Matched),
			strconv.Itoa(run.Updated),
			strconv.Itoa(run.WriteErrors),
			strings.Join(flags, ", "),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Media", "Policy", "Files", "Matched", "Updated", "Errors", ""},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func showRun(cmd *cobra.Command, db *database.DB, id string) error {
	out := cmd.OutOrStdout()

	run, err := db.FindRun(id)
	if err != nil {
		return err
	}
	decisions, err := db.GetRunDecisions(run.ID)
	if err != nil {
		return fmt.Errorf("failed to get decisions: %w", err)
	}

	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "  Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Dive log: %s\n", run.DiveLog)
	fmt.Fprintf(out, "  Media:    %s\n", run.MediaDir)
	fmt.Fprintf(out, "  Policy:   %s (dry run: %t)\n", run.Policy, run.DryRun)
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		dive := "-"
		if d.Outcome == "matched" {
			dive = "#" + strconv.Itoa(d.DiveNumber)
		}
		detail := d.Confidence
		if d.Reason != "" {
			detail = d.Reason
		}
		if d.WriteError != "" {
			detail = d.WriteError
		}
		rows = append(rows, []string{baseName(d.PhotoPath), d.Outcome, dive, d.Status, detail})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Outcome", "Dive", "Status", "Detail"}, rows, nil))
	return nil
}
