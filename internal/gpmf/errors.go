package gpmf

import (
	"errors"
	"fmt"
	"io"
)

// errZeroFourCC marks a header read that found a zero FourCC. At the
// top-level stream this is the clean end-of-stream sentinel (spec §3);
// inside a nested container it is a hard failure, since child records must
// exactly tile their parent's payload and a real record's FourCC is never
// zero.
var errZeroFourCC = errors.New("gpmf: zero fourcc")

// ErrUnexpectedEndOfStream reports a short read where the stream must not
// end: inside a payload, inside padding, inside header bytes 5-8, or
// (recursively) inside a nested container.
type ErrUnexpectedEndOfStream struct {
	Context string
}

func (e *ErrUnexpectedEndOfStream) Error() string {
	return fmt.Sprintf("gpmf: unexpected end of stream while %s", e.Context)
}

// ErrUnknownTypeCode reports a header type byte outside the closed set of
// recognized GPMF type codes.
type ErrUnknownTypeCode struct {
	Code byte
}

func (e *ErrUnknownTypeCode) Error() string {
	return fmt.Sprintf("gpmf: unknown type code %q (0x%02x)", rune(e.Code), e.Code)
}

// ErrInvalidDateTime reports a 'U' payload that does not match the fixed
// pattern YYMMDDhhmmss.fff.
type ErrInvalidDateTime struct {
	Raw string
}

func (e *ErrInvalidDateTime) Error() string {
	return fmt.Sprintf("gpmf: invalid datetime %q, want YYMMDDhhmmss.fff", e.Raw)
}

// ErrInvalidUTF8InFourCC reports a FourCC containing a byte outside the
// 7-bit ASCII range when an ASCII string view was requested.
type ErrInvalidUTF8InFourCC struct {
	Bytes [4]byte
}

func (e *ErrInvalidUTF8InFourCC) Error() string {
	return fmt.Sprintf("gpmf: fourcc %#v is not ASCII", e.Bytes)
}

// ErrDepthExceeded reports that nested record recursion exceeded the
// configured depth cap.
type ErrDepthExceeded struct {
	Limit int
}

func (e *ErrDepthExceeded) Error() string {
	return fmt.Sprintf("gpmf: nested record depth exceeded limit of %d", e.Limit)
}

// wrapEOF converts a raw io.EOF/io.ErrUnexpectedEOF from inside a payload,
// padding, or header tail read into an ErrUnexpectedEndOfStream carrying
// context. Any other error (including a non-EOF I/O error, or nil) passes
// through unchanged.
func wrapEOF(err error, context string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ErrUnexpectedEndOfStream{Context: context}
	}
	return err
}
