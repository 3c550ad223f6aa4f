// Package saterr defines the error kinds the core raises and
// wraps them with github.com/pkg/errors so every error a caller sees
// carries a stack trace back to where it was first returned, the way
// the ambient stack this project draws from (github.com/pkg/errors
// appears pulled in by the richer example repos in the retrieval pack,
// e.g. the operator-framework and AleutianLocal dependency trees) wraps
// errors at the boundary rather than deep in call chains.
package saterr

import "github.com/pkg/errors"

// Kind distinguishes the four error categories the core raises.
type Kind uint8

const (
	// ConfigError: malformed or inconsistent options, reported before
	// the loop starts.
	ConfigError Kind = iota
	// ResourceExhausted: time or memory limit reached; surfaced as a
	// termination reason upstream, not usually returned as an error, but
	// kept here for call sites that need the error shape (e.g. memory
	// accounting failing mid-allocation).
	ResourceExhausted
	// InvariantViolation: a bug signal, fatal, debug builds only.
	InvariantViolation
	// UnsupportedMode: the entry point was invoked with a mode this
	// build does not support.
	UnsupportedMode
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "config_error"
	case ResourceExhausted:
		return "resource_exhausted"
	case InvariantViolation:
		return "invariant_violation"
	case UnsupportedMode:
		return "unsupported_mode"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error with a message, wrapped so every creation
// site carries a stack trace.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.err }

// New constructs a Kind-tagged error with a stack trace rooted here.
func New(kind Kind, msg string) error {
	return errors.WithStack(&Error{Kind: kind, msg: msg, err: errors.New(msg)})
}

// Wrap attaches kind and msg to an existing error and records a stack
// trace at this call, whether or not err already carries one.
func Wrap(kind Kind, err error, msg string) error {
	return errors.WithStack(&Error{Kind: kind, msg: msg + ": " + err.Error(), err: err})
}

// Is reports whether err (or anything it wraps) is a *Error of kind k.
func Is(err error, k Kind) bool {
	var target *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			target = e
			break
		}
		err = errors.Unwrap(err)
	}
	return target != nil && target.Kind == k
}
