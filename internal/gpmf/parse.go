package gpmf

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultMaxDepth bounds nested-record recursion when a caller does not ask
// for a specific cap (spec §5: "in practice <= 4" for real GPMF streams).
const DefaultMaxDepth = 32

// ParseStream parses a top-level GPMF byte stream, returning its top-level
// records in source order. Termination is via a zero-FourCC sentinel or EOF
// within the first four bytes of a header; both are reported as a normal end
// of the returned list, never as an error (spec §4.2, §7).
func ParseStream(src io.ReadSeeker) ([]Record, error) {
	return ParseStreamWithDepth(src, DefaultMaxDepth)
}

// ParseStreamWithDepth is ParseStream with an explicit nested-recursion cap.
func ParseStreamWithDepth(src io.ReadSeeker, maxDepth int) ([]Record, error) {
	p := &parser{r: newPrimitiveReader(src), maxDepth: maxDepth}

	var records []Record
	for {
		header, err := p.readHeader()
		if err != nil {
			if errors.Is(err, errZeroFourCC) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return records, err
		}
		value, err := p.readValue(header, 1)
		if err != nil {
			return records, err
		}
		records = append(records, Record{Header: header, Value: value})
	}
	return records, nil
}

// parser holds the recursion-depth cap across a single ParseStream call.
// All other state (the current nested-container boundary) lives on the Go
// call stack, not on parser — there is no module-level or cross-call state.
type parser struct {
	r        *primitiveReader
	maxDepth int
}

// readHeader reads exactly 8 bytes and dispatches validation of the type
// byte. A zero FourCC surfaces as errZeroFourCC; only ParseStream's
// top-level loop treats that (or a short read within the first 4 bytes) as
// clean termination — everywhere else it propagates as a hard failure,
// since a nested container's children must exactly tile its payload and
// may not contain a zero FourCC.
func (p *parser) readHeader() (Header, error) {
	fourccBytes, err := p.r.readExact(4)
	if err != nil {
		return Header{}, err
	}
	var fourcc FourCC
	copy(fourcc[:], fourccBytes)
	if fourcc.IsZero() {
		return Header{}, errZeroFourCC
	}

	typeByte, err := p.r.readU8()
	if err != nil {
		return Header{}, &ErrUnexpectedEndOfStream{Context: "reading header type byte"}
	}
	sampleSize, err := p.r.readU8()
	if err != nil {
		return Header{}, &ErrUnexpectedEndOfStream{Context: "reading header sample size"}
	}
	repeat, err := p.r.readU16BE()
	if err != nil {
		return Header{}, &ErrUnexpectedEndOfStream{Context: "reading header repeat count"}
	}

	typ := TypeCode(typeByte)
	if _, ok := typ.elementWidth(); !ok {
		return Header{}, &ErrUnknownTypeCode{Code: typeByte}
	}

	return Header{FourCC: fourcc, Type: typ, SampleSize: sampleSize, Repeat: repeat}, nil
}

func (p *parser) readValue(h Header, depth int) (Value, error) {
	switch h.Type {
	case TypeInt8:
		vals, err := readNumericSlice(p.r, h, p.r.readI8)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt8, Int8s: vals}, nil
	case TypeUint8:
		return p.readUint8s(h)
	case TypeInt16:
		vals, err := readNumericSlice(p.r, h, p.r.readI16BE)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt16, Int16s: vals}, nil
	case TypeUint16:
		vals, err := readNumericSlice(p.r, h, p.r.readU16BE)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindUint16, Uint16s: vals}, nil
	case TypeInt32:
		vals, err := readNumericSlice(p.r, h, p.r.readI32BE)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt32, Int32s: vals}, nil
	case TypeUint32:
		vals, err := readNumericSlice(p.r, h, p.r.readU32BE)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindUint32, Uint32s: vals}, nil
	case TypeUint64:
		vals, err := readNumericSlice(p.r, h, p.r.readU64BE)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindUint64, Uint64s: vals}, nil
	case TypeFloat32:
		vals, err := readNumericSlice(p.r, h, p.r.readF32BE)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindFloat32, Float32s: vals}, nil
	case TypeFourCC:
		return p.readFourCCs(h)
	case TypeAscii:
		return p.readAscii(h)
	case TypeDateTime:
		return p.readDateTime(h)
	case TypeComplex:
		return p.readComplex(h)
	case TypeNested:
		return p.readNested(h, depth)
	default:
		// Unreachable: readHeader already rejected any type code for which
		// elementWidth reports !ok.
		panic(fmt.Sprintf("gpmf: readValue reached unreachable type code %q", rune(h.Type)))
	}
}

// readNumericSlice is the generic numeric fast path (spec §4.4, §9): every
// numeric type besides u8 is read element-by-element in big-endian via
// readOne. The u8 case bypasses this and bulk-reads its payload directly
// (readUint8s).
func readNumericSlice[T any](r *primitiveReader, h Header, readOne func() (T, error)) ([]T, error) {
	count := h.AxisCount() * int(h.Repeat)
	values := make([]T, count)
	for i := range values {
		v, err := readOne()
		if err != nil {
			return nil, wrapEOF(err, "reading numeric element")
		}
		values[i] = v
	}
	if err := r.skipPadding(h.PayloadLen()); err != nil {
		return nil, wrapEOF(err, "reading payload padding")
	}
	return values, nil
}

func (p *parser) readUint8s(h Header) (Value, error) {
	n := h.PayloadLen()
	buf, err := p.r.readExact(n)
	if err != nil {
		return Value{}, wrapEOF(err, "reading u8 payload")
	}
	if err := p.r.skipPadding(n); err != nil {
		return Value{}, wrapEOF(err, "reading payload padding")
	}
	return Value{Kind: KindUint8, Uint8s: buf}, nil
}

// readFourCCs reads a vector of FourCCs without the zero-check Header
// parsing applies — FourCC payloads inside an array may legitimately be
// any bytes (spec §4.2).
func (p *parser) readFourCCs(h Header) (Value, error) {
	count := h.AxisCount() * int(h.Repeat)
	values := make([]FourCC, count)
	for i := range values {
		b, err := p.r.readExact(4)
		if err != nil {
			return Value{}, wrapEOF(err, "reading fourcc element")
		}
		copy(values[i][:], b)
	}
	if err := p.r.skipPadding(h.PayloadLen()); err != nil {
		return Value{}, wrapEOF(err, "reading payload padding")
	}
	return Value{Kind: KindFourCC, FourCCs: values}, nil
}

func (p *parser) readAscii(h Header) (Value, error) {
	n := h.PayloadLen()
	buf, err := p.r.readExact(n)
	if err != nil {
		return Value{}, wrapEOF(err, "reading ascii payload")
	}
	if err := p.r.skipPadding(n); err != nil {
		return Value{}, wrapEOF(err, "reading payload padding")
	}
	return Value{Kind: KindAscii, Ascii: latin1ToUTF8(buf)}, nil
}

// dateTimeLayout is GPMF's fixed U-type pattern YYMMDDhhmmss.fff expressed
// as a Go reference-time layout.
const dateTimeLayout = "060102150405.000"

func (p *parser) readDateTime(h Header) (Value, error) {
	n := h.PayloadLen()
	buf, err := p.r.readExact(n)
	if err != nil {
		return Value{}, wrapEOF(err, "reading datetime payload")
	}
	if err := p.r.skipPadding(n); err != nil {
		return Value{}, wrapEOF(err, "reading payload padding")
	}

	raw := latin1ToUTF8(buf)
	trimmed := strings.TrimRight(raw, "\x00")
	t, err := time.Parse(dateTimeLayout, trimmed)
	if err != nil {
		return Value{}, &ErrInvalidDateTime{Raw: raw}
	}
	return Value{Kind: KindDateTime, DateTime: t}, nil
}

func (p *parser) readComplex(h Header) (Value, error) {
	n := h.PayloadLen()
	buf, err := p.r.readExact(n)
	if err != nil {
		return Value{}, wrapEOF(err, "reading complex payload")
	}
	if err := p.r.skipPadding(n); err != nil {
		return Value{}, wrapEOF(err, "reading payload padding")
	}
	return Value{Kind: KindComplex, Complex: buf}, nil
}

// readNested recurses until the declared payload end, per spec §4.2: end =
// tell() + round_up_4(sample_size*repeat); children are parsed one after
// another while tell() < end. Because every record (including this one)
// begins and ends on a 4-byte boundary, a well-formed stream reaches tell()
// == end exactly when its last child finishes; anything else is
// corruption.
func (p *parser) readNested(h Header, depth int) (Value, error) {
	if depth > p.maxDepth {
		return Value{}, &ErrDepthExceeded{Limit: p.maxDepth}
	}

	start, err := p.r.tell()
	if err != nil {
		return Value{}, err
	}
	end := start + int64(h.PaddedPayloadLen())

	var children []Record
	for {
		pos, err := p.r.tell()
		if err != nil {
			return Value{}, err
		}
		if pos == end {
			break
		}
		if pos > end {
			return Value{}, fmt.Errorf("gpmf: nested record children overshot declared end by %d bytes", pos-end)
		}

		header, err := p.readHeader()
		if err != nil {
			if errors.Is(err, errZeroFourCC) {
				return Value{}, fmt.Errorf("gpmf: unexpected zero fourcc inside nested container")
			}
			return Value{}, wrapEOF(err, "reading nested child header")
		}
		value, err := p.readValue(header, depth+1)
		if err != nil {
			return Value{}, err
		}
		children = append(children, Record{Header: header, Value: value})
	}

	return Value{Kind: KindNested, Nested: children}, nil
}
