package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerInterval = 80 * time.Millisecond

// Spinner displays an animated braille spinner on a writer (typically stderr).
// It is safe for concurrent use; Update may be called from any goroutine.
// A stopped spinner can be started again for the next tool.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	message string
	done    chan struct{}
	running bool
}

// NewSpinner creates a spinner that writes to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w}
}

// Start begins the animation with the given message. Starting a running
// spinner only replaces its message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	go s.loop(s.done)
}

// Update changes the displayed message while the spinner is running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the spinner and clears its line. It is idempotent and safe
// to call on a spinner that never started.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", max(len(s.message)+4, lineWidth)))
}

func (s *Spinner) loop(done <-chan struct{}) {
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			select {
			case <-done:
				s.mu.Unlock()
				return
			default:
			}
			// Pad so a shorter message overwrites a longer previous one.
			line := fmt.Sprintf("\r%c %s", spinnerFrames[i%len(spinnerFrames)], s.message)
			fmt.Fprintf(s.w, "%-*s", lineWidth+8, line)
			s.mu.Unlock()
		}
	}
}
