package runtime

import (
	"errors"
	"fmt"
)

var (
	// Compiled type layout and the host's view of a value disagree: a field
	// name or index does not exist. Callers treat this as fatal.
	ErrLayoutMismatch = errors.New("layout mismatch")
	// Native functions, userdata and threads cannot be moved to another
	// generation.
	ErrNotCloneable = errors.New("value cannot be deep cloned")
	// A value was inspected under the assumption of a variant it does not have.
	ErrUnexpectedShape = errors.New("unexpected value shape")
	// The heap of a generation is past its memory limit.
	ErrOutOfMemory = errors.New("out of memory")
)

func unexpectedShape(expected ValueKind, got Value) error {
	if got == nil {
		return fmt.Errorf("%w: expected %s, got nil", ErrUnexpectedShape, expected)
	}
	return fmt.Errorf("%w: expected %s, got %s %s", ErrUnexpectedShape, expected, got.Kind(), got)
}
