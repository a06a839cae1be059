// Package cfgerr defines the failure taxonomy reported for a component's
// configuration step.
package cfgerr

import (
	"errors"
	"fmt"
)

// Kind classifies a configuration failure. A Kind is itself an error so it
// can be used as an errors.Is target:
//
//	if errors.Is(err, cfgerr.TargetFileNotFound) { ... }
type Kind string

const (
	TargetFileNotFound Kind = "target file not found"
	CorruptConfigFile  Kind = "corrupt config file"
	MalformedKeyPath   Kind = "malformed key path"
	UnsupportedFormat  Kind = "unsupported format"
	WriteFailure       Kind = "write failure"

	// PathConflict reports a key path that runs through an existing leaf,
	// or indexes into an object (and vice versa).
	PathConflict Kind = "path conflict"

	// InvalidValue reports override text the target format cannot hold,
	// such as a line break in an INI value.
	InvalidValue Kind = "invalid value"
)

func (k Kind) Error() string {
	return string(k)
}

// Error carries the failure kind, the offending subject (a key path, a file
// path or a format name) and the underlying cause, if any.
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

// New returns an *Error of the given kind.
func New(kind Kind, subject string, err error) *Error {
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// Newf returns an *Error whose cause is built from a format string.
func Newf(kind Kind, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Subject != "" {
		msg += fmt.Sprintf(" '%s'", e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err does not carry one.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}
