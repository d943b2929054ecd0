package ncfilter

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrParse                   = errors.New("malformed filter spec")
	ErrAlreadyRegistered       = errors.New("filter already registered")
	ErrNotFound                = errors.New("filter not found")
	ErrNotInitialized          = errors.New("filter registry not initialized")
	ErrInvalidDescriptor       = errors.New("invalid filter descriptor")
	ErrIncompatibleStorage     = errors.New("storage layout cannot accept filters")
	ErrVariableLengthType      = errors.New("filters cannot apply to variable-length types")
	ErrMutuallyExclusiveFilter = errors.New("filter conflicts with an attached filter")
	ErrScalarVariable          = errors.New("filters cannot apply to scalar variables")
	ErrInvalidParams           = errors.New("invalid filter parameters")
	ErrInvalidChunkSize        = errors.New("invalid chunk size")
	ErrDimensionMismatch       = errors.New("chunk rank does not match variable rank")
)

// ParseError reports where and why a filter spec failed to parse.
// It matches ErrParse with errors.Is.
type ParseError struct {
	Text   string // Input being parsed
	Pos    int    // Byte offset of the offending token in Text
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s at position %d in %q", ErrParse, e.Reason, e.Pos, e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}
