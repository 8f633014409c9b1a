package processor

import (
	"time"

	"github.com/jamo/dive-tagger/internal/models"
)

// CameraTag is the Subsurface tag divers use to mark dives with a camera
const CameraTag = "camera"

// CameraTagReport lists dives whose camera tag disagrees with the photos
type CameraTagReport struct {
	UntaggedWithPhotos  []models.Dive
	TaggedWithoutPhotos []models.Dive
}

// Empty reports whether there is nothing to warn about
func (r CameraTagReport) Empty() bool {
	return len(r.UntaggedWithPhotos) == 0 && len(r.TaggedWithoutPhotos) == 0
}

// CameraTagWarnings compares the camera tag of dives inside the photo date
// range against the dives that actually received photos. matched is keyed
// by Dive.Key.
func CameraTagWarnings(dives []models.Dive, matched map[string]models.Dive, photoTimes []time.Time) CameraTagReport {
	var report CameraTagReport
	if len(photoTimes) == 0 {
		return report
	}

	oldest, newest := photoTimes[0], photoTimes[0]
	for _, t := range photoTimes[1:] {
		if t.Before(oldest) {
			oldest = t
		}
		if t.After(newest) {
			newest = t
		}
	}

	for _, dive := range dives {
		if dive.Start.Before(oldest) || dive.Start.After(newest) {
			continue
		}
		tagged := dive.HasTag(CameraTag)
		_, hasPhotos := matched[dive.Key()]
		switch {
		case hasPhotos && !tagged:
			report.UntaggedWithPhotos = append(report.UntaggedWithPhotos, dive)
		case tagged && !hasPhotos:
			report.TaggedWithoutPhotos = append(report.TaggedWithoutPhotos, dive)
		}
	}

	return report
}
