package contracts

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every *InputError via errors.Is
var ErrInvalidInput = errors.New("invalid input")

// InputError reports a malformed input record.
// Index is the position of the record in its input slice, -1 when not applicable.
type InputError struct {
	Record  string // enrollment, match, configuration
	Index   int
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s[%d].%s: %s", e.Record, e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s.%s: %s", e.Record, e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsInvalidInput reports whether err (or anything it wraps) is an input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
