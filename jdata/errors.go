package jdata

import (
	"errors"
	"fmt"
)

// ErrorKind classifies codec failures.
type ErrorKind uint8

const (
	KindMalformedStream ErrorKind = iota + 1
	KindShapeMismatch
	KindTypeMismatch
	KindCompression
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindMalformedStream:
		return "malformed stream"
	case KindShapeMismatch:
		return "shape mismatch"
	case KindTypeMismatch:
		return "type mismatch"
	case KindCompression:
		return "compression error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is.
var (
	ErrMalformedStream  = errors.New("jdata: malformed stream")
	ErrShapeMismatch    = errors.New("jdata: shape mismatch")
	ErrTypeMismatch     = errors.New("jdata: type mismatch")
	ErrCompression      = errors.New("jdata: compression error")
	ErrCodecUnavailable = errors.New("jdata: compression codec unavailable")
)

// Error is the error type returned by every encode and decode operation.
// Offset is the byte offset of the failure in the source stream, or -1
// when the failure is not tied to a stream position.
type Error struct {
	Kind   ErrorKind
	Offset int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := "jdata: " + e.Kind.String() + ": " + e.Msg
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMalformedStream:
		return e.Kind == KindMalformedStream
	case ErrShapeMismatch:
		return e.Kind == KindShapeMismatch
	case ErrTypeMismatch:
		return e.Kind == KindTypeMismatch
	case ErrCompression:
		return e.Kind == KindCompression
	}
	return false
}

func malformed(offset int, format string, args ...any) *Error {
	return &Error{Kind: KindMalformedStream, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func shapeMismatch(format string, args ...any) *Error {
	return &Error{Kind: KindShapeMismatch, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

func typeMismatch(format string, args ...any) *Error {
	return &Error{Kind: KindTypeMismatch, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

func compressionError(err error, format string, args ...any) *Error {
	return &Error{Kind: KindCompression, Offset: -1, Msg: fmt.Sprintf(format, args...), Err: err}
}

// atOffset attaches a stream offset to a codec error that has none.
func atOffset(err error, offset int) error {
	var e *Error
	if errors.As(err, &e) && e.Offset < 0 {
		cp := *e
		cp.Offset = offset
		return &cp
	}
	return err
}
