package media

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jamo/dive-tagger/internal/logging"
	"github.com/jamo/dive-tagger/internal/models"
)

// WriterOptions selects which outputs Apply produces.
type WriterOptions struct {
	EmbedGPS   bool
	XMPSidecar bool
}

// Writer applies a matched dive site to a media file: GPS embedded with
// exiftool and keywords in an XMP sidecar.
type Writer struct {
	tool     Exiftool
	opts     WriterOptions
	logger   *slog.Logger
	warnOnce sync.Once
}

// NewWriter builds a Writer.
func NewWriter(tool Exiftool, opts WriterOptions, logger *slog.Logger) *Writer {
	return &Writer{
		tool:   tool,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "media"),
	}
}

// Apply writes the site of a matched dive to path. taken, when known, is
// recorded as the sidecar's DateTimeOriginal. When GPS cannot be embedded
// (no exiftool, or exiftool cannot write the format) the coordinates go into
// the sidecar instead, and only a failed sidecar write is an error.
func (w *Writer) Apply(ctx context.Context, path string, site models.DiveSite, taken *time.Time) error {
	if !IsSupported(path) {
		return fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lat, lon, located := site.Coordinates()
	embedded := false
	var embedErr error
	if located && w.opts.EmbedGPS {
		if w.tool.Available() {
			if err := w.tool.WriteGPS(ctx, path, lat, lon); err != nil {
				embedErr = fmt.Errorf("embed gps in %s: %w", path, err)
				w.logger.Warn("gps embed failed; writing coordinates to sidecar",
					logging.String(logging.FieldPhoto, path),
					logging.Error(err))
			} else {
				embedded = true
			}
		} else {
			embedErr = fmt.Errorf("embed gps in %s: %w", path, ErrNoExiftool)
			w.warnOnce.Do(func() {
				w.logger.Warn("exiftool not found; GPS will only be written to XMP sidecars",
					logging.String("binary", w.tool.binary()))
			})
		}
	}

	if !w.opts.XMPSidecar {
		return embedErr
	}

	update := SidecarUpdate{Taken: taken}
	if site.Name != "" {
		update.Keywords = []string{site.Name}
	}
	if located && !embedded {
		update.Latitude, update.Longitude = &lat, &lon
	}
	if err := WriteSidecar(SidecarPath(path), update); err != nil {
		return err
	}

	w.logger.Debug("applied dive site",
		logging.String(logging.FieldPhoto, path),
		logging.String("site", site.Name),
		logging.Bool("gps_embedded", embedded))
	return nil
}
