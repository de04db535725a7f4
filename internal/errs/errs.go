// Package errs defines the tagged error kinds shared by every codec and
// container parser in audiotags. Failures the module detects itself are
// returned as *Error, so callers can branch on Kind without string
// matching; errors from the underlying reader's Seek/Read calls are in
// places passed through unwrapped.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a coarse classification of failure, matching the taxonomy in
// spec.md §7 ("Error Handling Design").
type Kind int

const (
	// Format identification.
	UnknownFormat Kind = iota

	// Size/shape.
	SizeMismatch
	TooMuchData
	BadFrameLength
	BadAtom
	AtomMismatch

	// Text/encoding.
	TextDecode
	TextEncode
	StringFromUTF8
	BadTimestamp

	// Domain.
	NotAPicture
	UnsupportedPicture
	UnsupportedTag
	FakeTag
	ID3v2

	// I/O.
	IO
	Fmt
	Alloc
)

func (k Kind) String() string {
	switch k {
	case UnknownFormat:
		return "UnknownFormat"
	case SizeMismatch:
		return "SizeMismatch"
	case TooMuchData:
		return "TooMuchData"
	case BadFrameLength:
		return "BadFrameLength"
	case BadAtom:
		return "BadAtom"
	case AtomMismatch:
		return "AtomMismatch"
	case TextDecode:
		return "TextDecode"
	case TextEncode:
		return "TextEncode"
	case StringFromUTF8:
		return "StringFromUTF8"
	case BadTimestamp:
		return "BadTimestamp"
	case NotAPicture:
		return "NotAPicture"
	case UnsupportedPicture:
		return "UnsupportedPicture"
	case UnsupportedTag:
		return "UnsupportedTag"
	case FakeTag:
		return "FakeTag"
	case ID3v2:
		return "Id3v2"
	case IO:
		return "Io"
	case Fmt:
		return "Fmt"
	case Alloc:
		return "Alloc"
	default:
		return "Unknown"
	}
}

// ID3v2Sub further classifies Kind == ID3v2 errors, per spec.md §7.
type ID3v2Sub int

const (
	NoSub ID3v2Sub = iota
	BadID3v2Version
	BadFrameID
	EmptyFrame
	InvalidUnsynchronisation
	BadPictureFormat
	BadSyncText
	MissingUfidOwner
	BadRva2ChannelType
	InvalidEncryptionMethodSymbol
	BadFrame
	InvalidLanguage
)

// Error is the error type audiotags returns for the failures it detects.
type Error struct {
	Kind    Kind
	Sub     ID3v2Sub
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Sub != NoSub {
		if e.cause != nil {
			return fmt.Sprintf("%s(%v): %s: %v", e.Kind, e.Sub, e.Message, e.cause)
		}
		return fmt.Sprintf("%s(%v): %s", e.Kind, e.Sub, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As (and github.com/pkg/errors.Cause) to
// reach the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given Kind with a formatted message.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches Kind context to an existing error, preserving it as the
// cause (github.com/pkg/errors semantics: errors.Cause(result) == err).
func Wrap(err error, k Kind, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(err)}
}

// ID3v2Err builds an ID3v2 sub-classified error.
func ID3v2Err(sub ID3v2Sub, format string, args ...interface{}) *Error {
	return &Error{Kind: ID3v2, Sub: sub, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an *Error of the given Kind, unwrapping
// github.com/pkg/errors-style wrapped causes along the way.
func Is(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		err = errors.Unwrap(err)
	}
	return e != nil && e.Kind == k
}
