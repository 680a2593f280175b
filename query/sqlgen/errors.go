package sqlgen

import "fmt"

// ValidationError reports a statement that was rejected before it
// reached the database: an unknown column, an operator outside the
// whitelist, or a malformed row shape. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}
