package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jamo/dive-tagger/internal/config"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DIVE_TAGGER_CONFIG", "")
	t.Setenv("DIVE_TAGGER_JOURNAL", "")
	t.Setenv("DIVE_TAGGER_EXIFTOOL", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "dive-tagger", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}

	wantJournal := filepath.Join(tempHome, ".local", "share", "dive-tagger", "journal.db")
	if cfg.Paths.JournalDB != wantJournal {
		t.Fatalf("journal path = %q, want %q", cfg.Paths.JournalDB, wantJournal)
	}
	if cfg.Resolution.Policy != "interactive" {
		t.Fatalf("default policy = %q", cfg.Resolution.Policy)
	}
	if !cfg.Writer.EmbedGPS || !cfg.Writer.XMPSidecar {
		t.Fatal("expected GPS embedding and XMP sidecars enabled by default")
	}
	if cfg.ExiftoolTimeout() != 30*time.Second {
		t.Fatalf("exiftool timeout = %s", cfg.ExiftoolTimeout())
	}
	if cfg.LogFile() != "" {
		t.Fatalf("file logging should be off by default, got %q", cfg.LogFile())
	}
	if cfg.LockPath() != wantJournal+".lock" {
		t.Fatalf("lock path = %q", cfg.LockPath())
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("Location() = %v, %v", loc, err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dive-tagger.toml")
	t.Setenv("DIVE_TAGGER_JOURNAL", "")
	t.Setenv("DIVE_TAGGER_EXIFTOOL", "")

	custom := config.Default()
	custom.Paths.JournalDB = filepath.Join(tempDir, "journal.db")
	custom.Paths.LogDir = filepath.Join(tempDir, "logs")
	custom.Media.Recursive = true
	custom.Media.ExcludeFolders = []string{" @eaDir ", "", "exports"}
	custom.Resolution.Policy = " Earliest "
	custom.Resolution.RememberChoices = true
	custom.Matching.Timezone = "America/Grand_Turk"
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("resolved %q exists=%v", resolved, exists)
	}
	if !cfg.Media.Recursive {
		t.Fatal("expected recursive scanning from file")
	}
	if strings.Join(cfg.Media.ExcludeFolders, ",") != "@eaDir,exports" {
		t.Fatalf("exclude folders not normalized: %q", cfg.Media.ExcludeFolders)
	}
	if cfg.Resolution.Policy != "earliest" || !cfg.Resolution.RememberChoices {
		t.Fatalf("unexpected resolution: %+v", cfg.Resolution)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level not normalized: %q", cfg.Logging.Level)
	}
	if cfg.LogFile() != filepath.Join(tempDir, "logs", "dive-tagger.log") {
		t.Fatalf("log file = %q", cfg.LogFile())
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "America/Grand_Turk" {
		t.Fatalf("location = %s", loc)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("DIVE_TAGGER_JOURNAL", filepath.Join(tempDir, "env.db"))
	t.Setenv("DIVE_TAGGER_EXIFTOOL", "/opt/bin/exiftool")

	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.JournalDB != filepath.Join(tempDir, "env.db") {
		t.Fatalf("journal = %q", cfg.Paths.JournalDB)
	}
	if cfg.Exiftool.Binary != "/opt/bin/exiftool" {
		t.Fatalf("exiftool = %q", cfg.Exiftool.Binary)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad policy", "[resolution]\npolicy = \"random\"\n", "resolution.policy"},
		{"bad timeout", "[exiftool]\ntimeout_seconds = 0\n", "exiftool.timeout_seconds"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad timezone", "[matching]\ntimezone = \"Mars/Olympus\"\n", "matching.timezone"},
		{"unknown key", "[writer]\nembed_gsp = true\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
