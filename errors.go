// errors.go - error kinds for the SWF player

package swf

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a player error per the error handling design: parse
// errors are fatal to construction, runtime errors recover at the
// action-record or frame boundary.
type ErrorKind int

const (
	// MalformedBinary covers header/tag/bit-stream structural violations.
	MalformedBinary ErrorKind = iota
	// DuplicateCharacterId is raised when the dictionary would be overwritten.
	DuplicateCharacterId
	// DictionaryMiss marks a placement referencing an unknown character id.
	DictionaryMiss
	// TesselationFailure marks a shape whose contours could not be closed.
	TesselationFailure
	// StackUnderflow marks an opcode popping an empty value stack.
	StackUnderflow
	// ScriptLimit marks recursion-depth or wall-clock budget exhaustion.
	ScriptLimit
	// TypeError marks an operand of the wrong tagged-value type.
	TypeError
	// UnsupportedAVM2 marks a file whose FileAttributes tag declares AVM2.
	UnsupportedAVM2
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedBinary:
		return "MalformedBinary"
	case DuplicateCharacterId:
		return "DuplicateCharacterId"
	case DictionaryMiss:
		return "DictionaryMiss"
	case TesselationFailure:
		return "TesselationFailure"
	case StackUnderflow:
		return "StackUnderflow"
	case ScriptLimit:
		return "ScriptLimit"
	case TypeError:
		return "TypeError"
	case UnsupportedAVM2:
		return "UnsupportedAVM2"
	default:
		return "Unknown"
	}
}

// PlayerError is the typed error value carried across every player boundary.
type PlayerError struct {
	Kind    ErrorKind
	Op      string // what was being attempted, e.g. "parse tag 39"
	Details string
	Err     error // underlying error, if any
}

func (e *PlayerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Details)
}

func (e *PlayerError) Unwrap() error { return e.Err }

func newErr(kind ErrorKind, op, details string) *PlayerError {
	return &PlayerError{Kind: kind, Op: op, Details: details}
}

func wrapErr(kind ErrorKind, op, details string, err error) *PlayerError {
	return &PlayerError{Kind: kind, Op: op, Details: details, Err: errors.WithStack(err)}
}

// IsKind reports whether err is a *PlayerError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := err.(*PlayerError)
	if !ok {
		return false
	}
	return pe.Kind == kind
}
