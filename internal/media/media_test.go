package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamo/dive-tagger/internal/logging"
	"github.com/jamo/dive-tagger/internal/media"
	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/testsupport"
)

func coralGarden() models.DiveSite {
	return testsupport.LocatedSite("site1", "Coral Garden", 21.123456, -71.987654)
}

func missingExiftool(t *testing.T) media.Exiftool {
	return media.Exiftool{Binary: filepath.Join(t.TempDir(), "no-exiftool")}
}

func TestReaderFallsBackToExiftool(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "exiftool",
		`echo '[{"SourceFile":"x","MediaCreateDate":"2024:08:15 14:30:12","CreateDate":"2024:08:15 12:00:00"}]'`)
	tool := media.Exiftool{Binary: bin, Timeout: 5 * time.Second}
	reader := media.NewReader(tool, time.UTC, logging.NewNop())

	for _, name := range []string{"clip.mp4", "broken.jpg"} {
		path := filepath.Join(dir, name)
		testsupport.WriteFile(t, path, "not really media")

		got, ok := reader.CaptureTime(context.Background(), path)
		if !ok {
			t.Fatalf("%s: expected capture time from exiftool", name)
		}
		if want := time.Date(2024, 8, 15, 14, 30, 12, 0, time.UTC); !got.Equal(want) {
			t.Fatalf("%s: capture time = %s, want %s", name, got, want)
		}
	}
}

func TestReaderWithoutAnySource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	testsupport.WriteFile(t, path, "x")

	reader := media.NewReader(missingExiftool(t), time.UTC, nil)
	if _, ok := reader.CaptureTime(context.Background(), path); ok {
		t.Fatal("expected no capture time")
	}
	if _, _, ok := reader.CurrentGPS(context.Background(), path); ok {
		t.Fatal("expected no gps")
	}
	if _, ok := reader.CaptureTime(context.Background(), filepath.Join(dir, "a.png")); ok {
		t.Fatal("unsupported files never have a capture time")
	}
}

func TestReaderCurrentGPSAppliesHemisphere(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "exiftool",
		`echo '[{"GPSLatitude":21.5,"GPSLongitude":71.25,"GPSLatitudeRef":"N","GPSLongitudeRef":"W"}]'`)
	path := filepath.Join(dir, "clip.mp4")
	testsupport.WriteFile(t, path, "x")

	reader := media.NewReader(media.Exiftool{Binary: bin}, time.UTC, nil)
	lat, lon, ok := reader.CurrentGPS(context.Background(), path)
	if !ok || lat != 21.5 || lon != -71.25 {
		t.Fatalf("CurrentGPS = %v %v %v", lat, lon, ok)
	}
}

func TestWriterEmbedsGPSWithExiftool(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	bin := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "exiftool",
		`echo "$@" > `+argsFile)
	photo := filepath.Join(dir, "IMG_0001.jpg")
	testsupport.WriteFile(t, photo, "x")

	writer := media.NewWriter(media.Exiftool{Binary: bin}, media.WriterOptions{EmbedGPS: true, XMPSidecar: true}, nil)
	taken := time.Date(2024, 8, 15, 10, 45, 0, 0, time.UTC)
	if err := writer.Apply(context.Background(), photo, coralGarden(), &taken); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	for _, want := range []string{"-overwrite_original", "-GPSLatitude=21.123456", "-GPSLatitudeRef=N", "-GPSLongitude=71.987654", "-GPSLongitudeRef=W", photo} {
		if !strings.Contains(string(args), want) {
			t.Fatalf("exiftool args %q missing %q", args, want)
		}
	}

	sidecar, err := os.ReadFile(filepath.Join(dir, "IMG_0001.xmp"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	content := string(sidecar)
	if !strings.Contains(content, "Coral Garden") || !strings.Contains(content, "2024-08-15T10:45:00Z") {
		t.Fatalf("sidecar missing keyword or date:\n%s", content)
	}
	if strings.Contains(content, "GPSLatitude") {
		t.Fatalf("embedded GPS should not be duplicated into the sidecar:\n%s", content)
	}
}

func TestWriterFallsBackToSidecarGPS(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "clip.mp4")
	testsupport.WriteFile(t, photo, "x")

	writer := media.NewWriter(missingExiftool(t), media.WriterOptions{EmbedGPS: true, XMPSidecar: true}, nil)
	if err := writer.Apply(context.Background(), photo, coralGarden(), nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	sidecar, err := os.ReadFile(filepath.Join(dir, "clip.xmp"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	for _, want := range []string{"21,7.4074N", "71,59.2592W", "lightroom:hierarchicalSubject", "dc:subject"} {
		if !strings.Contains(string(sidecar), want) {
			t.Fatalf("sidecar missing %q:\n%s", want, sidecar)
		}
	}
}

func TestWriterFallsBackToSidecarWhenEmbedFails(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "exiftool",
		`echo "Error: Can't currently write AVI files" >&2
exit 1`)
	clip := filepath.Join(dir, "clip.avi")
	testsupport.WriteFile(t, clip, "x")

	writer := media.NewWriter(media.Exiftool{Binary: bin}, media.WriterOptions{EmbedGPS: true, XMPSidecar: true}, nil)
	if err := writer.Apply(context.Background(), clip, coralGarden(), nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	sidecar, err := os.ReadFile(filepath.Join(dir, "clip.xmp"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	for _, want := range []string{"21,7.4074N", "71,59.2592W", "Coral Garden"} {
		if !strings.Contains(string(sidecar), want) {
			t.Fatalf("sidecar missing %q:\n%s", want, sidecar)
		}
	}

	embedOnly := media.NewWriter(media.Exiftool{Binary: bin}, media.WriterOptions{EmbedGPS: true}, nil)
	if err := embedOnly.Apply(context.Background(), clip, coralGarden(), nil); err == nil || !strings.Contains(err.Error(), "embed gps") {
		t.Fatalf("expected embed error without sidecars, got %v", err)
	}
}

func TestWriterMergesExistingKeywords(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "IMG_0002.cr3")
	testsupport.WriteFile(t, photo, "x")
	testsupport.WriteFile(t, filepath.Join(dir, "IMG_0002.xmp"), `<?xml version="1.0"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:Rating="3">
   <dc:subject><rdf:Bag><rdf:li>Turtle</rdf:li><rdf:li>Coral Garden</rdf:li></rdf:Bag></dc:subject>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>`)

	writer := media.NewWriter(missingExiftool(t), media.WriterOptions{XMPSidecar: true}, nil)
	site := coralGarden()
	site.Name = "Amphitheater"
	for i := 0; i < 2; i++ {
		if err := writer.Apply(context.Background(), photo, site, nil); err != nil {
			t.Fatalf("Apply #%d: %v", i, err)
		}
	}

	keywords, err := media.ReadSidecarKeywords(filepath.Join(dir, "IMG_0002.xmp"))
	if err != nil {
		t.Fatalf("ReadSidecarKeywords: %v", err)
	}
	if got := strings.Join(keywords, ","); got != "Amphitheater,Coral Garden,Turtle" {
		t.Fatalf("keywords = %s", got)
	}
	content, _ := os.ReadFile(filepath.Join(dir, "IMG_0002.xmp"))
	if !strings.Contains(string(content), `xmp:Rating="3"`) {
		t.Fatalf("unrelated properties were dropped:\n%s", content)
	}
	if strings.Count(string(content), "<dc:subject>") != 1 {
		t.Fatalf("expected a single dc:subject:\n%s", content)
	}
}

func TestWriterErrors(t *testing.T) {
	dir := t.TempDir()

	writer := media.NewWriter(missingExiftool(t), media.WriterOptions{EmbedGPS: true, XMPSidecar: true}, nil)
	if err := writer.Apply(context.Background(), filepath.Join(dir, "a.png"), coralGarden(), nil); !errors.Is(err, media.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	blocked := filepath.Join(dir, "IMG_0003.jpg")
	testsupport.WriteFile(t, blocked, "x")
	if err := os.Mkdir(filepath.Join(dir, "IMG_0003.xmp"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := writer.Apply(context.Background(), blocked, coralGarden(), nil); err == nil {
		t.Fatal("expected error when the sidecar cannot be written")
	}

	embedOnly := media.NewWriter(missingExiftool(t), media.WriterOptions{EmbedGPS: true}, nil)
	photo := filepath.Join(dir, "IMG_0004.jpg")
	testsupport.WriteFile(t, photo, "x")
	if err := embedOnly.Apply(context.Background(), photo, coralGarden(), nil); !errors.Is(err, media.ErrNoExiftool) {
		t.Fatalf("expected ErrNoExiftool, got %v", err)
	}
}
