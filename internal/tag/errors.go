package tag

import (
	"errors"
	"fmt"
)

// Phase identifies which pass of the pipeline detected an error.
type Phase int

const (
	PhaseScan Phase = iota
	PhaseValidate
)

func (p Phase) String() string {
	switch p {
	case PhaseScan:
		return "scan"
	case PhaseValidate:
		return "validate"
	}

	return "<unknown>"
}

var ErrMalformedTag = errors.New("malformed tag")

type MismatchedClosingError struct {
	Name string
}

func (e *MismatchedClosingError) Error() string {
	return fmt.Sprintf("mismatched closing tag '%s'", e.Name)
}

type UnclosedOpeningError struct {
	Name string

	// Open holds every tag still open at end of input, outermost first.
	// Only the scanner fills it in.
	Open []Token
}

func (e *UnclosedOpeningError) Error() string {
	return fmt.Sprintf("mismatched opening tag '%s' (no corresponding closing tag)", e.Name)
}

// Error is a structural error situated in the source document.
type Error struct {
	Phase    Phase
	Inner    error
	Location Location
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Inner, &e.Location)
}

func (e *Error) At() Location {
	return e.Location
}
