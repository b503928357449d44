package agent

import (
	"errors"
	"fmt"
)

// ErrInterrupted is the cause recorded when a run is cancelled through
// its context.
var ErrInterrupted = errors.New("run interrupted")

// LoopError wraps an unexpected failure inside the turn loop with the
// state and turn where it happened.
type LoopError struct {
	State State
	Turn  int
	Cause error
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("agent loop failed in %s (turn %d): %v", e.State, e.Turn, e.Cause)
}

func (e *LoopError) Unwrap() error {
	return e.Cause
}
