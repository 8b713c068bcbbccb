package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/gravsim/internal/physics"
)

// Domain errors for simulation operations.
var (
	// ErrTickInProgress is returned when the body set is mutated while a tick
	// is iterating it. The request is dropped, not queued.
	ErrTickInProgress = errors.New("sim: tick in progress, body set is locked")

	ErrBodyLimit = errors.New("sim: body limit reached")

	// ErrInvalidBody indicates a negative radius or non-finite position/velocity.
	ErrInvalidBody = errors.New("sim: invalid body parameters")

	ErrUnknownBody = errors.New("sim: unknown body")

	ErrInvalidDelta = errors.New("sim: delta time must be finite and non-negative")

	// ErrInvalidState indicates a body update produced NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
)

// BodyError reports a failed update of a single body. The body is rolled back
// to its state before the tick; other bodies are unaffected.
type BodyError struct {
	ID      physics.BodyID
	Tick    uint64
	Wrapped error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d (tick %d): %v", e.ID, e.Tick, e.Wrapped)
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}
