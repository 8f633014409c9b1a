package media

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// captureFields are tried in order; the first parseable value wins.
var captureFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

func decodeEXIF(path string) (*exif.Exif, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode exif: %w", err)
	}
	return x, nil
}

func exifCaptureTime(x *exif.Exif, loc *time.Location) (time.Time, bool) {
	for _, field := range captureFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, ok := parseEXIFTime(raw, loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func exifGPS(x *exif.Exif) (lat, lon float64, ok bool) {
	lat, lon, err := x.LatLong()
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// parseEXIFTime reads the "YYYY:MM:DD HH:MM:SS" prefix of an EXIF or
// exiftool date. Sub-seconds and offsets are ignored; the naive clock time
// is placed in loc.
func parseEXIFTime(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if len(s) < len(exifTimeLayout) {
		return time.Time{}, false
	}
	s = s[:len(exifTimeLayout)]
	if strings.HasPrefix(s, "0000") {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(exifTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
