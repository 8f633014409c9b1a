package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ScanOptions controls directory traversal.
type ScanOptions struct {
	Recursive      bool
	ExcludeFolders []string
}

// Scan lists supported media files under dir in lexicographic order.
// Excluded folders are matched by base name at any depth.
func Scan(dir string, opts ScanOptions) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("media directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media directory: %s is not a directory", dir)
	}

	excluded := make(map[string]bool, len(opts.ExcludeFolders))
	for _, name := range opts.ExcludeFolders {
		excluded[name] = true
	}

	var files []string
	if !opts.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read media directory: %w", err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && IsSupported(entry.Name()) {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk media directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
