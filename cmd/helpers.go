package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jamo/dive-tagger/internal/media"
	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/processor"
	"github.com/jamo/dive-tagger/internal/subsurface"
)

// Shared by tag and analyze
var (
	subsurfacePath string
	mediaDir       string
	recursive      bool
	excludeFolders []string
)

var errNoDives = errors.New("no dives found in the dive log")

func loadLogbook(out io.Writer) (models.Logbook, *time.Location, error) {
	if strings.TrimSpace(subsurfacePath) == "" {
		return models.Logbook{}, nil, fmt.Errorf("a Subsurface log is required (use -s/--subsurface)")
	}
	loc, err := cfg.Location()
	if err != nil {
		return models.Logbook{}, nil, err
	}

	fmt.Fprintf(out, "Loading dive log %s...\n", subsurfacePath)
	book, err := subsurface.ParseFile(subsurfacePath, loc, logger)
	if err != nil {
		return models.Logbook{}, nil, fmt.Errorf("failed to load dive log: %w", err)
	}
	fmt.Fprintf(out, "Loaded %d dives at %d sites\n", len(book.Dives), len(book.Sites))
	return book, loc, nil
}

func scanMedia(out io.Writer) ([]string, error) {
	if strings.TrimSpace(mediaDir) == "" {
		return nil, fmt.Errorf("a media directory is required (use -i/--input)")
	}
	opts := media.ScanOptions{
		Recursive:      recursive || cfg.Media.Recursive,
		ExcludeFolders: append(append([]string{}, cfg.Media.ExcludeFolders...), excludeFolders...),
	}
	paths, err := media.Scan(mediaDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan media: %w", err)
	}
	fmt.Fprintf(out, "Found %d media files in %s\n", len(paths), mediaDir)
	return paths, nil
}

func exiftool() media.Exiftool {
	return media.Exiftool{Binary: cfg.Exiftool.Binary, Timeout: cfg.ExiftoolTimeout()}
}

func printCameraWarnings(out io.Writer, book models.Logbook, report processor.CameraTagReport) {
	if report.Empty() {
		return
	}
	fmt.Fprintln(out, "\nCamera tag warnings:")
	if len(report.UntaggedWithPhotos) > 0 {
		fmt.Fprintf(out, "  Dives with photos but no %q tag:\n", processor.CameraTag)
		for _, d := range report.UntaggedWithPhotos {
			fmt.Fprintf(out, "    • %s\n", describeDive(book, d))
		}
	}
	if len(report.TaggedWithoutPhotos) > 0 {
		fmt.Fprintf(out, "  Dives tagged %q without matched photos:\n", processor.CameraTag)
		for _, d := range report.TaggedWithoutPhotos {
			fmt.Fprintf(out, "    • %s\n", describeDive(book, d))
		}
	}
}

func describeDive(book models.Logbook, d models.Dive) string {
	site, _ := book.SiteFor(d)
	return fmt.Sprintf("Dive #%d - %s (%s)", d.Number, site.Name, d.Start.Format("2006-01-02 15:04"))
}

func formatGPS(site models.DiveSite) string {
	lat, lon, ok := site.Coordinates()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

func formatTaken(p models.Photo) string {
	if p.Taken == nil {
		return "-"
	}
	return p.Taken.Format("2006-01-02 15:04:05")
}

func formatCandidates(cands []models.Candidate) string {
	if len(cands) == 0 {
		return "-"
	}
	parts := make([]string, len(cands))
	for i, c := range cands {
		parts[i] = "#" + strconv.Itoa(c.Dive.Number) + " " + c.Confidence.String()
	}
	return strings.Join(parts, ", ")
}

func baseName(path string) string {
	return filepath.Base(path)
}
