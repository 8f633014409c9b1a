// Package prompt asks the user on a terminal which dive an ambiguous photo
// belongs to.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/jamo/dive-tagger/internal/models"
	"github.com/jamo/dive-tagger/internal/processor"
)

// ErrAborted is returned when input ends before a choice was made.
var ErrAborted = errors.New("prompt aborted")

type lineResult struct {
	text string
	err  error
}

// Prompter is an interactive processor.ResolutionPolicy. Prompts are
// serialized; at most one read from the input is outstanding at a time.
type Prompter struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	logbook models.Logbook
	pending chan lineResult
}

// New builds a Prompter reading answers from in and writing questions to
// out. The logbook supplies site names and coordinates for display.
func New(in io.Reader, out io.Writer, logbook models.Logbook) *Prompter {
	return &Prompter{
		in:      bufio.NewReader(in),
		out:     out,
		logbook: logbook,
	}
}

// Resolve shows the tied dives and waits for a number. 0 skips the photo;
// anything else that is not a listed number asks again.
func (p *Prompter) Resolve(ctx context.Context, photo models.Photo, tied []models.Candidate) (processor.Resolution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.describe(photo, tied)
	for {
		fmt.Fprintf(p.out, "  Choice [0-%d]: ", len(tied))
		line, err := p.readLine(ctx)
		if err != nil {
			return processor.Resolution{}, err
		}

		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		switch {
		case convErr == nil && n == 0:
			return processor.SkipChoice(), nil
		case convErr == nil && n >= 1 && n <= len(tied):
			return processor.Choose(tied[n-1].Dive), nil
		default:
			fmt.Fprintf(p.out, "  Invalid choice %q, enter a number between 0 and %d.\n", strings.TrimSpace(line), len(tied))
		}
	}
}

func (p *Prompter) describe(photo models.Photo, tied []models.Candidate) {
	taken := "unknown time"
	if photo.Taken != nil {
		taken = photo.Taken.Format("2006-01-02 15:04:05")
	}
	confidence := models.ConfidenceNone
	if len(tied) > 0 {
		confidence = tied[0].Confidence
	}

	fmt.Fprintf(p.out, "\n%s (taken %s) matches %d dives (%s):\n",
		filepath.Base(photo.Path), taken, len(tied), confidence)
	for i, c := range tied {
		site, _ := p.logbook.SiteFor(c.Dive)
		gps := "no GPS"
		if lat, lon, ok := site.Coordinates(); ok {
			gps = fmt.Sprintf("%.6f, %.6f", lat, lon)
		}
		fmt.Fprintf(p.out, "  %d) Dive #%d  %s  %s-%s (%s)  %s\n",
			i+1, c.Dive.Number, site.Name,
			c.Dive.Start.Format("2006-01-02 15:04"), c.Dive.End().Format("15:04"),
			c.Dive.Duration, gps)
	}
	fmt.Fprintln(p.out, "  0) Skip this photo")
}

// readLine waits for one line of input or for ctx to end. A read abandoned
// by cancellation stays pending and is consumed by the next call.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			text, err := p.in.ReadString('\n')
			ch <- lineResult{text: text, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		if r.err == nil {
			return r.text, nil
		}
		if errors.Is(r.err, io.EOF) {
			if strings.TrimSpace(r.text) != "" {
				return r.text, nil
			}
			return "", ErrAborted
		}
		return "", fmt.Errorf("read choice: %w", r.err)
	}
}
