package media

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupported is returned for files whose extension is not a known
	// image or video format.
	ErrUnsupported = errors.New("unsupported media format")
	// ErrNoExiftool is returned when an operation needs exiftool and the
	// binary cannot be found.
	ErrNoExiftool = errors.New("exiftool not available")
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
	".cr2": true, ".cr3": true, ".nef": true, ".arw": true, ".dng": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".m4v": true, ".mkv": true,
}

// tiffBased lists formats goexif can decode directly.
var tiffBased = map[string]bool{
	".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
	".cr2": true, ".nef": true, ".arw": true, ".dng": true,
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool { return imageExtensions[ext(path)] }

// IsVideo reports whether path has a supported video extension.
func IsVideo(path string) bool { return videoExtensions[ext(path)] }

// IsSupported reports whether path is an image or a video.
func IsSupported(path string) bool { return IsImage(path) || IsVideo(path) }

// SidecarPath returns the XMP sidecar location for a media file: the same
// name with the extension replaced by .xmp.
func SidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".xmp"
}
