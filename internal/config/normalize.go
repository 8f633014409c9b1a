package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if v := strings.TrimSpace(os.Getenv("DIVE_TAGGER_JOURNAL")); v != "" {
		c.Paths.JournalDB = v
	}
	if v := strings.TrimSpace(os.Getenv("DIVE_TAGGER_EXIFTOOL")); v != "" {
		c.Exiftool.Binary = v
	}

	var err error
	if c.Paths.JournalDB, err = expandPath(c.Paths.JournalDB); err != nil {
		return fmt.Errorf("paths.journal_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
	}

	c.Exiftool.Binary = strings.TrimSpace(c.Exiftool.Binary)
	c.Resolution.Policy = strings.ToLower(strings.TrimSpace(c.Resolution.Policy))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	folders := c.Media.ExcludeFolders[:0]
	for _, f := range c.Media.ExcludeFolders {
		if f = strings.TrimSpace(f); f != "" {
			folders = append(folders, f)
		}
	}
	c.Media.ExcludeFolders = folders

	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
