package gpmf

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// header builds an 8-byte KLV header: fourcc, type byte, sample size,
// repeat count (big-endian).
func header(fourcc string, typ byte, sampleSize uint8, repeat uint16) []byte {
	buf := make([]byte, 8)
	copy(buf[0:4], fourcc)
	buf[4] = typ
	buf[5] = sampleSize
	buf[6] = byte(repeat >> 8)
	buf[7] = byte(repeat)
	return buf
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func reader(chunks ...[]byte) *bytes.Reader {
	var all []byte
	for _, c := range chunks {
		all = append(all, c...)
	}
	return bytes.NewReader(all)
}

// S1: minimal leaf record — a single u32 value, no padding needed.
func TestParseStream_MinimalLeaf(t *testing.T) {
	data := reader(
		header("TEST", byte(TypeUint32), 4, 1),
		[]byte{0x00, 0x00, 0x00, 0x2A},
	)

	records, err := ParseStream(data)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Header.FourCC.String() != "TEST" {
		t.Errorf("fourcc = %q, want TEST", rec.Header.FourCC.String())
	}
	if rec.Value.Kind != KindUint32 {
		t.Errorf("kind = %v, want KindUint32", rec.Value.Kind)
	}
	if len(rec.Value.Uint32s) != 1 || rec.Value.Uint32s[0] != 42 {
		t.Errorf("values = %v, want [42]", rec.Value.Uint32s)
	}
}

// S2: an ASCII payload whose length is not a multiple of 4 must consume its
// padding bytes so the next record starts at the right offset.
func TestParseStream_PaddedAscii(t *testing.T) {
	payload := pad4([]byte("hi")) // "hi\x00\x00"
	data := reader(
		header("STR ", byte(TypeAscii), 1, 2),
		payload,
		header("NEXT", byte(TypeUint8), 1, 1),
		[]byte{0x07, 0x00, 0x00, 0x00},
	)

	records, err := ParseStream(data)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Value.Ascii != "hi" {
		t.Errorf("ascii = %q, want %q", records[0].Value.Ascii, "hi")
	}
	if records[1].Header.FourCC.String() != "NEXT" {
		t.Errorf("second record fourcc = %q, want NEXT", records[1].Header.FourCC.String())
	}
}

// S3: a nested container whose children exactly tile its payload.
func TestParseStream_Nested(t *testing.T) {
	child := append(header("CHLD", byte(TypeUint16), 2, 1), 0x00, 0x05, 0x00, 0x00)
	parentHeader := header("PRNT", 0, 1, uint16(len(child)))
	data := reader(parentHeader, child)

	records, err := ParseStream(data)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	parent := records[0]
	if parent.Value.Kind != KindNested {
		t.Fatalf("kind = %v, want KindNested", parent.Value.Kind)
	}
	if len(parent.Value.Nested) != 1 {
		t.Fatalf("got %d children, want 1", len(parent.Value.Nested))
	}
	child0, ok := parent.Find(MustFourCC("CHLD"))
	if !ok {
		t.Fatal("Find(CHLD) = false, want true")
	}
	if len(child0.Value.Uint16s) != 1 || child0.Value.Uint16s[0] != 5 {
		t.Errorf("child values = %v, want [5]", child0.Value.Uint16s)
	}
}

// S4: a zero FourCC at the top level is a clean terminator, not an error.
func TestParseStream_CleanTerminator(t *testing.T) {
	data := reader(
		header("ONE ", byte(TypeUint8), 1, 1),
		[]byte{0x01, 0x00, 0x00, 0x00},
		make([]byte, 8), // zero FourCC + zero type/size/repeat
	)

	records, err := ParseStream(data)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

// EOF exactly at a header boundary is equally clean — no trailing sentinel
// record is required.
func TestParseStream_CleanEOF(t *testing.T) {
	data := reader(
		header("ONE ", byte(TypeUint8), 1, 1),
		[]byte{0x01, 0x00, 0x00, 0x00},
	)

	records, err := ParseStream(data)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

// S5: an unrecognized type byte is a hard failure.
func TestParseStream_UnknownTypeCode(t *testing.T) {
	data := reader(
		header("BAD ", '~', 1, 1),
		[]byte{0x00, 0x00, 0x00, 0x00},
	)

	_, err := ParseStream(data)
	var unknown *ErrUnknownTypeCode
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *ErrUnknownTypeCode", err)
	}
	if unknown.Code != '~' {
		t.Errorf("Code = %q, want '~'", rune(unknown.Code))
	}
}

// A zero FourCC encountered inside a nested container (rather than at the
// top level) is corruption, not a clean terminator.
func TestParseStream_ZeroFourCCInsideNestedIsHardFailure(t *testing.T) {
	// Declare the nested payload as 12 bytes (3 header-words) but only put a
	// zero FourCC there, forcing readNested to see errZeroFourCC instead of
	// reaching pos == end.
	badChild := make([]byte, 12)
	parentHeader := header("PRNT", 0, 1, uint16(len(badChild)))
	data := reader(parentHeader, badChild)

	_, err := ParseStream(data)
	if err == nil {
		t.Fatal("err = nil, want a hard failure for zero fourcc inside nested container")
	}
	if errors.Is(err, errZeroFourCC) {
		t.Error("zero fourcc inside a nested container must not be reported as the clean-terminator sentinel")
	}
}

// A short read in the middle of a payload is UnexpectedEndOfStream, never a
// clean terminator.
func TestParseStream_TruncatedPayloadIsHardFailure(t *testing.T) {
	data := reader(
		header("TEST", byte(TypeUint32), 4, 1),
		[]byte{0x00, 0x00}, // only 2 of 4 payload bytes present
	)

	_, err := ParseStream(data)
	var unexpected *ErrUnexpectedEndOfStream
	if !errors.As(err, &unexpected) {
		t.Fatalf("err = %v, want *ErrUnexpectedEndOfStream", err)
	}
}

// Overshoot: a nested record whose declared payload is shorter than even
// one child header, so reading that header alone carries tell() past the
// declared end.
func TestParseStream_NestedOvershoot(t *testing.T) {
	child := append(header("CHLD", byte(TypeUint32), 4, 1), 0, 0, 0, 1)
	// Declare a payload of 4 bytes — shorter than CHLD's own 8-byte header —
	// so readHeader() alone overshoots the declared end.
	parentHeader := header("PRNT", 0, 1, 4)
	data := reader(parentHeader, child)

	_, err := ParseStream(data)
	if err == nil {
		t.Fatal("err = nil, want overshoot failure")
	}
}

func TestParseStreamWithDepth_ExceedsLimit(t *testing.T) {
	// Build two nested containers (TOP > MID > LEAF), then ask for a depth
	// cap of 1: TOP parses at depth 1, so MID at depth 2 exceeds it.
	leaf := append(header("LEAF", byte(TypeUint8), 1, 1), 1, 0, 0, 0)
	inner := append(header("MID ", 0, 1, uint16(len(leaf))), leaf...)
	outerHeader := header("TOP ", 0, 1, uint16(len(inner)))
	data := reader(outerHeader, inner)

	_, err := ParseStreamWithDepth(data, 1)
	var depthErr *ErrDepthExceeded
	if !errors.As(err, &depthErr) {
		t.Fatalf("err = %v, want *ErrDepthExceeded", err)
	}
}

func TestFourCC_ASCIIString(t *testing.T) {
	f := MustFourCC("GPS9")
	got, err := f.ASCIIString()
	if err != nil {
		t.Fatalf("ASCIIString: %v", err)
	}
	if got != "GPS9" {
		t.Errorf("got %q, want GPS9", got)
	}

	var bad FourCC
	copy(bad[:], []byte{0xFF, 'A', 'B', 'C'})
	if _, err := bad.ASCIIString(); err == nil {
		t.Error("ASCIIString on a non-ASCII fourcc: err = nil, want error")
	}
}

func TestHeader_AxisCountAndPayloadLen(t *testing.T) {
	h := Header{Type: TypeInt32, SampleSize: 16, Repeat: 3}
	if got := h.AxisCount(); got != 4 {
		t.Errorf("AxisCount = %d, want 4", got)
	}
	if got := h.PayloadLen(); got != 48 {
		t.Errorf("PayloadLen = %d, want 48", got)
	}
	if got := h.PaddedPayloadLen(); got != 48 {
		t.Errorf("PaddedPayloadLen = %d, want 48", got)
	}

	h2 := Header{Type: TypeAscii, SampleSize: 1, Repeat: 5}
	if got := h2.PaddedPayloadLen(); got != 8 {
		t.Errorf("PaddedPayloadLen = %d, want 8", got)
	}
}

func TestDateTime_ValidAndInvalid(t *testing.T) {
	data := reader(
		header("DATE", byte(TypeDateTime), 16, 1),
		[]byte("220615123045.500"),
	)
	records, err := ParseStream(data)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	dt := records[0].Value.DateTime
	if dt.Year() != 2022 || dt.Month() != 6 || dt.Day() != 15 {
		t.Errorf("parsed date = %v, want 2022-06-15", dt)
	}

	badData := reader(
		header("DATE", byte(TypeDateTime), 16, 1),
		[]byte("not-a-datetime!!"),
	)
	_, err = ParseStream(badData)
	var invalidDate *ErrInvalidDateTime
	if !errors.As(err, &invalidDate) {
		t.Fatalf("err = %v, want *ErrInvalidDateTime", err)
	}
}

func TestParseStream_EmptyStreamIsClean(t *testing.T) {
	records, err := ParseStream(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("ParseStream on empty input: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

var _ io.ReadSeeker = (*bytes.Reader)(nil)
