package main

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// spinner renders a small working indicator on stderr while the agent is
// thinking. Pause and Resume let the approval prompt take over the
// terminal; both are safe to call from any goroutine.
type spinner struct {
	mu      sync.Mutex
	active  bool
	stop    chan struct{}
	done    chan struct{}
	message string
}

func newSpinner(message string) *spinner {
	return &spinner{message: message}
}

func (s *spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.spin(s.stop, s.done)
}

func (s *spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	close(s.stop)
	<-s.done
}

// Pause stops the animation so a prompt can use the terminal.
func (s *spinner) Pause() { s.Stop() }

// Resume restarts the animation after a prompt.
func (s *spinner) Resume() { s.Start() }

func (s *spinner) spin(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-stop:
			// Clear the line.
			fmt.Fprintf(os.Stderr, "\r%*s\r", len(s.message)+2, "")
			return
		case <-ticker.C:
			fmt.Fprintf(os.Stderr, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], s.message)
			frame++
		}
	}
}
