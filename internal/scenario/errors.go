package scenario

import "fmt"

// MalformedError wraps a structural parse failure of a level document.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("scenario: malformed document: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// InvalidError reports a semantic constraint violation on one field.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("scenario: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &InvalidError{Field: field, Reason: reason}
}
