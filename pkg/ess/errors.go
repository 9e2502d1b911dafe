package ess

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF    = errors.New("unexpected end of save data")
	ErrNoHeader         = errors.New("save data too short for a file header")
	ErrForeignContainer = errors.New("save is wrapped in an Xbox 360 container")
	ErrBadFileID        = errors.New("invalid save file identifier")
	ErrUnsupported      = errors.New("unsupported save feature")
	ErrInconsistent     = errors.New("inconsistent save data")
	ErrIO               = errors.New("save source read failed")
)

// ErrorKind classifies a DecodeError.
type ErrorKind uint8

const (
	KindUnexpectedEOF ErrorKind = iota + 1
	KindNoHeader
	KindForeignContainer
	KindBadFileID
	KindUnsupported
	// KindInconsistent is only produced in strict mode.
	KindInconsistent
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnexpectedEOF:
		return "unexpected_eof"
	case KindNoHeader:
		return "no_header"
	case KindForeignContainer:
		return "foreign_container"
	case KindBadFileID:
		return "bad_file_id"
	case KindUnsupported:
		return "unsupported"
	case KindInconsistent:
		return "inconsistent"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnexpectedEOF:
		return ErrUnexpectedEOF
	case KindNoHeader:
		return ErrNoHeader
	case KindForeignContainer:
		return ErrForeignContainer
	case KindBadFileID:
		return ErrBadFileID
	case KindUnsupported:
		return ErrUnsupported
	case KindInconsistent:
		return ErrInconsistent
	case KindIO:
		return ErrIO
	default:
		return nil
	}
}

// DecodeError is the only error type returned by Decode. It matches the
// package sentinels through errors.Is, so callers can branch on either the
// Kind or the sentinel.
type DecodeError struct {
	Kind ErrorKind
	// Field is the dotted path of the field being decoded, e.g.
	// "globals.quick_keys[3]". Empty when the failure precedes any field.
	Field string
	// Offset is the number of bytes consumed before the failing read.
	Offset int64
	// FileID holds the offending identifier for KindBadFileID.
	FileID [12]byte
	// Err is the underlying cause, if any.
	Err error

	// fullPath marks Field as already absolute.
	fullPath bool
}

func (e *DecodeError) Error() string {
	msg := e.Kind.sentinel().Error()
	switch e.Kind {
	case KindBadFileID:
		msg = fmt.Sprintf("%s: expected %q, got %q", msg, FileMagic, e.FileID[:])
	case KindUnsupported, KindInconsistent:
		if e.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %s at offset %d)", msg, e.Field, e.Offset)
	}
	if e.Kind == KindIO && e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnsupportedError describes a region of the format that is reachable but
// not decoded.
type UnsupportedError struct {
	Feature string
	Detail  string
}

func (e UnsupportedError) Error() string {
	if e.Detail == "" {
		return e.Feature
	}
	return e.Feature + " " + e.Detail
}

func newDecodeError(kind ErrorKind, off int64, err error) *DecodeError {
	return &DecodeError{Kind: kind, Offset: off, Err: err}
}

// inField prefixes the field path of a DecodeError as it travels up through
// the structural decoder. Other errors are returned unchanged.
func inField(name string, err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.fullPath {
		return err
	}
	switch {
	case de.Field == "":
		de.Field = name
	case de.Field[0] == '[':
		de.Field = name + de.Field
	default:
		de.Field = name + "." + de.Field
	}
	return de
}

func inIndex(name string, idx int, err error) error {
	return inField(fmt.Sprintf("%s[%d]", name, idx), err)
}
