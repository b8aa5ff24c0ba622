package console

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress on a terminal. It does nothing when the writer is not a terminal.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner writing to w with the given message.
func NewSpinner(w io.Writer, message string) *Spinner {
	s := &Spinner{}
	if !IsTerminal(w) {
		return s
	}

	s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.spinner.Suffix = " " + message
	_ = s.spinner.Color("cyan")
	return s
}

func (s *Spinner) Start() {
	if s.spinner != nil {
		s.spinner.Start()
	}
}

func (s *Spinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

// UpdateMessage replaces the message shown next to the spinner.
func (s *Spinner) UpdateMessage(message string) {
	if s.spinner != nil {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// IsEnabled reports whether the spinner renders anything.
func (s *Spinner) IsEnabled() bool {
	return s.spinner != nil
}
