package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/processor"
	"github.com/jamo/dive-tagger/internal/prompt"
	"github.com/jamo/dive-tagger/internal/testsupport"
)

func fixture() (models.Logbook, models.Photo, []models.Candidate) {
	book := testsupport.NewLogbook(
		[]models.DiveSite{
			testsupport.LocatedSite("a", "Coral Garden", 21.5, -71.5),
			testsupport.LocatedSite("b", "The Wall", 21.6, -71.6),
		},
		testsupport.NewDive(45, "10:30", 45, "a"),
		testsupport.NewDive(46, "10:40", 40, "b"),
	)
	taken := testsupport.At("10:50")
	photo := models.Photo{Path: "/photos/IMG_0001.jpg", Taken: &taken}
	tied := []models.Candidate{
		{PhotoPath: photo.Path, Dive: book.Dives[0], Confidence: models.ConfidenceWithinDive},
		{PhotoPath: photo.Path, Dive: book.Dives[1], Confidence: models.ConfidenceWithinDive},
	}
	return book, photo, tied
}

func TestResolveChoosesListedDive(t *testing.T) {
	book, photo, tied := fixture()
	var out bytes.Buffer
	p := prompt.New(strings.NewReader("2\n"), &out, book)

	got, err := p.Resolve(context.Background(), photo, tied)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != processor.Choose(book.Dives[1]) {
		t.Fatalf("resolution = %+v", got)
	}
	for _, want := range []string{"IMG_0001.jpg", "1) Dive #45  Coral Garden", "2) Dive #46  The Wall", "21.600000, -71.600000", "0) Skip this photo", "within_dive"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("prompt output missing %q:\n%s", want, out.String())
		}
	}
}

func TestResolveRepromptsThenSkips(t *testing.T) {
	book, photo, tied := fixture()
	var out bytes.Buffer
	p := prompt.New(strings.NewReader("abc\n7\n\n0\n"), &out, book)

	got, err := p.Resolve(context.Background(), photo, tied)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !got.Skip {
		t.Fatalf("expected skip, got %+v", got)
	}
	if n := strings.Count(out.String(), "Invalid choice"); n != 3 {
		t.Fatalf("expected 3 invalid-choice messages, got %d:\n%s", n, out.String())
	}
}

func TestResolveAcceptsFinalLineWithoutNewline(t *testing.T) {
	book, photo, tied := fixture()
	p := prompt.New(strings.NewReader("1"), io.Discard, book)
	got, err := p.Resolve(context.Background(), photo, tied)
	if err != nil || got != processor.Choose(book.Dives[0]) {
		t.Fatalf("Resolve = %+v, %v", got, err)
	}
}

func TestResolveAbortsOnEOF(t *testing.T) {
	book, photo, tied := fixture()
	p := prompt.New(strings.NewReader("x\n"), io.Discard, book)
	if _, err := p.Resolve(context.Background(), photo, tied); !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestResolveHonoursCancellation(t *testing.T) {
	book, photo, tied := fixture()
	r, w := io.Pipe()
	defer w.Close()
	p := prompt.New(r, io.Discard, book)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Resolve(ctx, photo, tied)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Resolve did not return after cancellation")
	}
}

func TestRememberedPromptAsksOnce(t *testing.T) {
	book, photo, tied := fixture()
	var out bytes.Buffer
	policy := processor.Remember(prompt.New(strings.NewReader("1\n"), &out, book))

	for i := 0; i < 3; i++ {
		got, err := policy.Resolve(context.Background(), photo, tied)
		if err != nil || got != processor.Choose(book.Dives[0]) {
			t.Fatalf("call %d: %+v, %v", i, got, err)
		}
	}
	if n := strings.Count(out.String(), "Choice ["); n != 1 {
		t.Fatalf("expected a single prompt, got %d", n)
	}
}
