package media_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamo/dive-tagger/internal/media"
	"github.com/jamo/dive-tagger/internal/testsupport"
)

func TestScan(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"b.JPG",
		"a.cr3",
		"notes.txt",
		"clip.MOV",
		"day2/c.nef",
		"day2/deep/d.mp4",
		"@eaDir/thumb.jpg",
		"day2/@eaDir/thumb2.jpg",
	} {
		testsupport.WriteFile(t, filepath.Join(root, rel), "x")
	}

	flat, err := media.Scan(root, media.ScanOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := relative(root, flat); got != "a.cr3,b.JPG,clip.MOV" {
		t.Fatalf("flat scan = %s", got)
	}

	deep, err := media.Scan(root, media.ScanOptions{Recursive: true, ExcludeFolders: []string{"@eaDir"}})
	if err != nil {
		t.Fatalf("Scan recursive: %v", err)
	}
	if got := relative(root, deep); got != "a.cr3,b.JPG,clip.MOV,day2/c.nef,day2/deep/d.mp4" {
		t.Fatalf("recursive scan = %s", got)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	if _, err := media.Scan(filepath.Join(t.TempDir(), "nope"), media.ScanOptions{}); err == nil {
		t.Fatal("expected error for missing directory")
	}
	file := filepath.Join(t.TempDir(), "file.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := media.Scan(file, media.ScanOptions{}); err == nil {
		t.Fatal("expected error when scanning a file")
	}
}

func TestSupportedExtensions(t *testing.T) {
	for path, want := range map[string]bool{
		"a.jpeg": true, "a.TIFF": true, "a.dng": true, "a.arw": true,
		"a.m4v": true, "a.mkv": true, "a.avi": true,
		"a.png": false, "a.xmp": false, "noext": false,
	} {
		if got := media.IsSupported(path); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", path, got, want)
		}
	}
	if got := media.SidecarPath("/p/IMG_0001.CR2"); got != "/p/IMG_0001.xmp" {
		t.Fatalf("SidecarPath = %q", got)
	}
}

func relative(root string, paths []string) string {
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, _ := filepath.Rel(root, p)
		out[i] = filepath.ToSlash(rel)
	}
	return strings.Join(out, ",")
}
