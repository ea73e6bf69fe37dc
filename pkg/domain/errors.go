package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when caller supplied parameters or options cannot be used.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat is returned for unknown export formats or a format used by the wrong operation.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrMissingOutput is returned when the tool reported success but an expected file is absent.
	ErrMissingOutput = errors.New("expected output file is missing")

	// ErrMalformedOutput is returned when a summary or definition file cannot be parsed.
	ErrMalformedOutput = errors.New("malformed output file")

	// ErrResultNotFound is returned when a result ID cannot be found in the store.
	ErrResultNotFound = errors.New("result not found")
)

// OutputError describes a problem with a file the external tool was expected to write.
// It matches ErrMissingOutput or ErrMalformedOutput through errors.Is.
type OutputError struct {
	Kind  error  // ErrMissingOutput or ErrMalformedOutput
	Label string // e.g. "summary file"
	Path  string
	Err   error
}

func (e *OutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Label, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Label, e.Path, e.Kind)
}

func (e *OutputError) Is(target error) bool {
	return target == e.Kind
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// MissingOutput builds an OutputError for an absent file.
func MissingOutput(label, path string) error {
	return &OutputError{Kind: ErrMissingOutput, Label: label, Path: path}
}

// MalformedOutput builds an OutputError for an unparsable file.
func MalformedOutput(label, path string, cause error) error {
	return &OutputError{Kind: ErrMalformedOutput, Label: label, Path: path, Err: cause}
}
