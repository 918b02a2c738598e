package intake

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("intake: record not found")

// ValidationError reports the first missing required intake field. Field
// holds the JSON key of the field, so the message can be surfaced to the
// submitting client as-is.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}
