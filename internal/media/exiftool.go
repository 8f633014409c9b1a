package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Exiftool wraps the exiftool command line tool used for RAW and video
// metadata that goexif cannot decode, and for embedding GPS tags.
type Exiftool struct {
	Binary  string
	Timeout time.Duration
}

// videoDateFields mirrors the tags QuickTime and RAW containers use for
// capture time, in preference order.
var videoDateFields = []string{"DateTimeOriginal", "MediaCreateDate", "CreateDate", "CreationDate"}

func (e Exiftool) binary() string {
	if b := strings.TrimSpace(e.Binary); b != "" {
		return b
	}
	return "exiftool"
}

// Lookup resolves the binary on PATH.
func (e Exiftool) Lookup() (string, error) {
	path, err := exec.LookPath(e.binary())
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoExiftool, e.binary())
	}
	return path, nil
}

// Available reports whether the binary can be executed.
func (e Exiftool) Available() bool {
	_, err := e.Lookup()
	return err == nil
}

func (e Exiftool) run(ctx context.Context, args ...string) ([]byte, error) {
	bin, err := e.Lookup()
	if err != nil {
		return nil, err
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// ReadTags returns the requested tags for path in numeric (-n) form.
func (e Exiftool) ReadTags(ctx context.Context, path string, tags ...string) (map[string]any, error) {
	args := []string{"-j", "-n"}
	for _, tag := range tags {
		args = append(args, "-"+tag)
	}
	args = append(args, path)

	output, err := e.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(output, &records); err != nil {
		return nil, fmt.Errorf("exiftool parse: %w", err)
	}
	if len(records) == 0 {
		return map[string]any{}, nil
	}
	return records[0], nil
}

// CaptureTime reads the first available creation date tag.
func (e Exiftool) CaptureTime(ctx context.Context, path string, loc *time.Location) (time.Time, error) {
	tags, err := e.ReadTags(ctx, path, videoDateFields...)
	if err != nil {
		return time.Time{}, err
	}
	for _, field := range videoDateFields {
		if raw, ok := tags[field].(string); ok {
			if t, ok := parseEXIFTime(raw, loc); ok {
				return t, nil
			}
		}
	}
	return time.Time{}, errors.New("exiftool: no capture date")
}

// GPS reads embedded coordinates as signed decimal degrees.
func (e Exiftool) GPS(ctx context.Context, path string) (lat, lon float64, err error) {
	tags, err := e.ReadTags(ctx, path, "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef")
	if err != nil {
		return 0, 0, err
	}
	lat, latOK := toFloat(tags["GPSLatitude"])
	lon, lonOK := toFloat(tags["GPSLongitude"])
	if !latOK || !lonOK {
		return 0, 0, errors.New("exiftool: no gps coordinates")
	}
	if ref, _ := tags["GPSLatitudeRef"].(string); strings.EqualFold(ref, "S") && lat > 0 {
		lat = -lat
	}
	if ref, _ := tags["GPSLongitudeRef"].(string); strings.EqualFold(ref, "W") && lon > 0 {
		lon = -lon
	}
	return lat, lon, nil
}

// WriteGPS embeds coordinates into path, replacing the original file.
func (e Exiftool) WriteGPS(ctx context.Context, path string, lat, lon float64) error {
	latRef, lonRef := "N", "E"
	if lat < 0 {
		latRef = "S"
	}
	if lon < 0 {
		lonRef = "W"
	}
	_, err := e.run(ctx,
		"-overwrite_original",
		"-GPSLatitude="+formatDegrees(lat),
		"-GPSLatitudeRef="+latRef,
		"-GPSLongitude="+formatDegrees(lon),
		"-GPSLongitudeRef="+lonRef,
		path,
	)
	return err
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(math.Abs(v), 'f', 6, 64)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
