package utils

import (
	"fmt"
	"io"
	"strings"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner renders a single-line rotating progress indicator for
// long waits. Call Clear before writing anything else to the same
// stream.
type Spinner struct {
	out   io.Writer
	label string
	index int
	drawn bool
}

func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{
		out:   out,
		label: label,
	}
}

// Tick redraws the spinner with its next frame.
func (s *Spinner) Tick() {
	fmt.Fprintf(s.out, "\r%s %s", s.label, spinnerFrames[s.index])
	s.index = (s.index + 1) % len(spinnerFrames)
	s.drawn = true
}

// Clear erases the spinner line if one has been drawn.
func (s *Spinner) Clear() {
	if !s.drawn {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.label)+2))
	s.drawn = false
}
