package listing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by reads that match no listing.
	ErrNotFound = errors.New("listing not found")

	// ErrUnauthenticatedOwner is returned when a publish request carries
	// no owner identifier, or one that resolves to no stored user.
	ErrUnauthenticatedOwner = errors.New("owner not authenticated")
)

// ValidationError reports invalid publish input. Field names the offending
// request field as the client spells it (e.g. "askingPrice").
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Msg: "required"}
}

func outOfRange(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// RepositoryError reports a failed database operation.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
