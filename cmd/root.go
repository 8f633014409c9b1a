package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jamo/dive-tagger/internal/config"
	"github.com/jamo/dive-tagger/internal/logging"
)

var (
	configPath  string
	journalPath string
	verbose     bool
	dryRun      bool
)

// Populated by PersistentPreRunE for every subcommand.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dive-tagger",
	Short: "Tag dive photos with the dive site they were taken at",
	Long: `Dive Tagger matches photos and videos to the dives in a Subsurface log by
capture time, then writes the dive site's GPS coordinates into the file and
its name into an XMP sidecar as a keyword.

Photos taken during a dive match it directly; photos taken within two hours
of a dive's start match as "near dive". When several dives qualify equally
you are asked to choose (or a headless --policy decides).`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Load .env file if it exists
	godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (can be set via DIVE_TAGGER_CONFIG env var)")
	rootCmd.PersistentFlags().StringVar(&journalPath, "journal", "", "Path to the run journal database (can be set via DIVE_TAGGER_JOURNAL env var)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show every candidate dive and per-photo decision")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be written without modifying any file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, _, _, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if strings.TrimSpace(journalPath) != "" {
			loaded.Paths.JournalDB = journalPath
		}
		cfg = loaded

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		outputs := []string{"stderr"}
		if file := cfg.LogFile(); file != "" {
			outputs = append(outputs, file)
		}
		logger, err = logging.New(logging.Options{
			Level:       level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	}
}

// stdinIsTerminal reports whether the command reads from an interactive
// terminal. Non-file readers (tests) count as interactive.
func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return true
	}
	return isTerminal(f.Fd())
}
