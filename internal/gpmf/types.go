// Package gpmf decodes GPMF (GoPro Metadata Format) KLV payloads into a tree
// of Records.
//
// GPMF is a self-describing, recursive TLV stream: each record carries an
// 8-byte header (FourCC tag, type code, sample size, repeat count) followed
// by a value payload padded to a 4-byte boundary. The nested type code
// recurses, framing a sequence of child records inside a parent's payload.
package gpmf

import "fmt"

// FourCC is a 4-byte record tag, compared bytewise. A FourCC of all zero
// bytes is never a real record's tag — it is the sentinel the top-level
// parser uses to recognize clean end of stream.
type FourCC [4]byte

// MustFourCC builds a FourCC from a 4-character ASCII string, panicking if
// s is not exactly 4 bytes. Intended for FourCC literals known at compile
// time (e.g. "DEVC", "STRM"), not for decoding arbitrary input.
func MustFourCC(s string) FourCC {
	if len(s) != 4 {
		panic(fmt.Sprintf("gpmf: FourCC literal %q is not 4 bytes", s))
	}
	var f FourCC
	copy(f[:], s)
	return f
}

// IsZero reports whether f is the all-zero sentinel FourCC.
func (f FourCC) IsZero() bool {
	return f == FourCC{}
}

// String returns f's bytes reinterpreted as Latin-1, unchecked. Used for
// display and logging; use ASCIIString to validate the bytes are ASCII.
func (f FourCC) String() string {
	return latin1ToUTF8(f[:])
}

// ASCIIString returns f's bytes as a string, failing if any byte is outside
// the 7-bit ASCII range.
func (f FourCC) ASCIIString() (string, error) {
	for _, b := range f {
		if b >= 0x80 {
			return "", &ErrInvalidUTF8InFourCC{Bytes: f}
		}
	}
	return string(f[:]), nil
}

// TypeCode is the single type byte from a KLV header, identifying the kind
// of value that follows.
type TypeCode byte

// The closed set of GPMF type codes (spec §3).
const (
	TypeInt8     TypeCode = 'b'
	TypeUint8    TypeCode = 'B'
	TypeInt16    TypeCode = 's'
	TypeUint16   TypeCode = 'S'
	TypeInt32    TypeCode = 'l'
	TypeUint32   TypeCode = 'L'
	TypeUint64   TypeCode = 'J'
	TypeFloat32  TypeCode = 'f'
	TypeFourCC   TypeCode = 'F'
	TypeAscii    TypeCode = 'c'
	TypeDateTime TypeCode = 'U'
	TypeComplex  TypeCode = '?'
	TypeNested   TypeCode = 0
)

// elementWidth returns the byte width of one element of this type, and
// whether t is a recognized type code at all. Complex and Nested report a
// width of 0 — their payload carries raw bytes or child records rather than
// a fixed-width element.
func (t TypeCode) elementWidth() (width int, ok bool) {
	switch t {
	case TypeInt8, TypeUint8, TypeAscii:
		return 1, true
	case TypeInt16, TypeUint16:
		return 2, true
	case TypeInt32, TypeUint32, TypeFloat32, TypeFourCC:
		return 4, true
	case TypeUint64:
		return 8, true
	case TypeDateTime:
		return 16, true
	case TypeComplex, TypeNested:
		return 0, true
	default:
		return 0, false
	}
}

// latin1ToUTF8 converts each input byte to the Unicode code point of the
// same value (ISO-8859-1 is a subset of Unicode). This is NOT UTF-8
// decoding: bytes >= 0x80 map to U+0080..U+00FF rather than forming
// multi-byte sequences.
func latin1ToUTF8(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func roundUp4(n int) int {
	return (n + 3) &^ 3
}
