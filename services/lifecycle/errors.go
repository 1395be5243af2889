package lifecycle

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the engine's error taxonomy. Handlers map these to
// HTTP statuses with errors.Is; services wrap them with context.
var (
	// ErrNotFound: the target entity is absent or soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition: a state-machine guard rejected the requested move.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrAlreadyInState: an idempotent action was attempted a second time.
	ErrAlreadyInState = errors.New("already in state")
	// ErrConflict: a unique constraint rejected a write.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports malformed or out-of-range input. Detected before
// any write, so a ValidationError guarantees no partial mutation happened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
