// Package media finds photos and videos on disk, reads their capture time
// and embedded GPS, and writes matched dive sites back as GPS tags and XMP
// sidecar keywords.
package media
