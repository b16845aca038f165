// Package pdferr defines the error kinds shared by the filter and split pipelines.
package pdferr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDecode     Kind = "decode"
	KindEncode     Kind = "encode"
	KindIO         Kind = "io"
)

// Error carries the failing operation, the path it touched and the cause.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Op)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func Validation(op, path string, err error) *Error { return newError(KindValidation, op, path, err) }
func Decode(op, path string, err error) *Error     { return newError(KindDecode, op, path, err) }
func Encode(op, path string, err error) *Error     { return newError(KindEncode, op, path, err) }
func IO(op, path string, err error) *Error         { return newError(KindIO, op, path, err) }

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
