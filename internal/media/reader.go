package media

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jamo/dive-tagger/internal/logging"
)

// Reader extracts capture time and embedded GPS from media files, using
// goexif for TIFF-based images and exiftool for everything else.
type Reader struct {
	tool   Exiftool
	loc    *time.Location
	logger *slog.Logger
}

// NewReader builds a Reader interpreting naive timestamps in loc.
func NewReader(tool Exiftool, loc *time.Location, logger *slog.Logger) *Reader {
	if loc == nil {
		loc = time.Local
	}
	return &Reader{
		tool:   tool,
		loc:    loc,
		logger: logging.NewComponentLogger(logger, "media"),
	}
}

// CaptureTime returns when the file was shot. ok is false when no
// timestamp could be read by any means.
func (r *Reader) CaptureTime(ctx context.Context, path string) (time.Time, bool) {
	if !IsSupported(path) {
		return time.Time{}, false
	}

	if tiffBased[ext(path)] {
		x, err := decodeEXIF(path)
		if err == nil {
			if t, ok := exifCaptureTime(x, r.loc); ok {
				return t, true
			}
		} else {
			r.logger.Debug("exif decode failed",
				logging.String(logging.FieldPhoto, path),
				logging.Error(err))
		}
	}

	t, err := r.tool.CaptureTime(ctx, path, r.loc)
	if err != nil {
		if !errors.Is(err, ErrNoExiftool) {
			r.logger.Debug("exiftool capture time unavailable",
				logging.String(logging.FieldPhoto, path),
				logging.Error(err))
		}
		return time.Time{}, false
	}
	return t, true
}

// CurrentGPS returns coordinates already embedded in the file.
func (r *Reader) CurrentGPS(ctx context.Context, path string) (lat, lon float64, ok bool) {
	if !IsSupported(path) {
		return 0, 0, false
	}
	if tiffBased[ext(path)] {
		if x, err := decodeEXIF(path); err == nil {
			if lat, lon, ok := exifGPS(x); ok {
				return lat, lon, true
			}
		}
	}
	lat, lon, err := r.tool.GPS(ctx, path)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
