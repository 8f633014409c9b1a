package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains file locations used by the CLI.
type Paths struct {
	JournalDB string `toml:"journal_db"`
	LogDir    string `toml:"log_dir"`
}

// Media controls how media directories are scanned.
type Media struct {
	Recursive      bool     `toml:"recursive"`
	ExcludeFolders []string `toml:"exclude_folders"`
}

// Exiftool configures the external exiftool binary.
type Exiftool struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Writer controls how decisions are applied to media files.
type Writer struct {
	EmbedGPS   bool `toml:"embed_gps"`
	XMPSidecar bool `toml:"xmp_sidecar"`
}

// Resolution selects how ambiguous matches are settled.
type Resolution struct {
	// Policy is one of "interactive", "earliest" or "skip".
	Policy string `toml:"policy"`
	// RememberChoices reuses an answer for an identical set of tied dives
	// within one run.
	RememberChoices bool `toml:"remember_choices"`
}

// Matching contains settings that affect how timestamps are interpreted.
type Matching struct {
	// Timezone names the zone dive log and camera clocks were set to.
	// Both are naive local times, so they must share a zone.
	Timezone string `toml:"timezone"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dive-tagger.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Media      Media      `toml:"media"`
	Exiftool   Exiftool   `toml:"exiftool"`
	Writer     Writer     `toml:"writer"`
	Resolution Resolution `toml:"resolution"`
	Matching   Matching   `toml:"matching"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dive-tagger/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults are returned and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("DIVE_TAGGER_CONFIG"))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("dive-tagger.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Matching.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	if strings.EqualFold(name, "utc") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("matching.timezone: %w", err)
	}
	return loc, nil
}

// ExiftoolTimeout returns the per-invocation exiftool timeout.
func (c *Config) ExiftoolTimeout() time.Duration {
	return time.Duration(c.Exiftool.TimeoutSeconds) * time.Second
}

// LogFile returns the log file path, or "" when file logging is disabled.
func (c *Config) LogFile() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "dive-tagger.log")
}

// LockPath returns the lock file guarding the journal against concurrent runs.
func (c *Config) LockPath() string {
	return c.Paths.JournalDB + ".lock"
}
