package gpmf

import "time"

// Header is a KLV record's fixed 8-byte prefix: fourcc[4] | type[1] |
// sample_size[1] | repeat[2 BE].
type Header struct {
	FourCC     FourCC
	Type       TypeCode
	SampleSize uint8
	Repeat     uint16
}

// PayloadLen is the unpadded byte length of the value payload:
// sample_size * repeat.
func (h Header) PayloadLen() int {
	return int(h.SampleSize) * int(h.Repeat)
}

// PaddedPayloadLen is PayloadLen rounded up to the next 4-byte boundary.
func (h Header) PaddedPayloadLen() int {
	return roundUp4(h.PayloadLen())
}

// AxisCount is the number of elements per sample: sample_size /
// element_width, or 1 when the type has no fixed element width (Complex,
// Nested).
func (h Header) AxisCount() int {
	width, _ := h.Type.elementWidth()
	if width == 0 {
		return 1
	}
	return int(h.SampleSize) / width
}

// Kind tags which field of Value is populated. Keeping an explicit kind
// alongside typed fields (rather than an interface{} payload) lets callers
// switch on Kind without a type assertion.
type Kind int

const (
	KindInt8 Kind = iota
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindUint64
	KindFloat32
	KindFourCC
	KindAscii
	KindDateTime
	KindComplex
	KindNested
)

// Value is the tagged union over a record's payload, one variant per GPMF
// type code (spec §3).
type Value struct {
	Kind Kind

	Int8s    []int8
	Uint8s   []uint8
	Int16s   []int16
	Uint16s  []uint16
	Int32s   []int32
	Uint32s  []uint32
	Uint64s  []uint64
	Float32s []float32
	FourCCs  []FourCC
	Ascii    string
	DateTime time.Time
	Complex  []byte
	Nested   []Record
}

// Record is a decoded KLV entry: its header plus its decoded value. Records
// are immutable once parsed; a Nested record's Value.Nested children are
// owned by it.
type Record struct {
	Header Header
	Value  Value
}

// Find returns the first direct child of a Nested record whose FourCC
// equals fourcc, and whether one was found. Find on a non-Nested record
// always reports false.
func (r Record) Find(fourcc FourCC) (Record, bool) {
	if r.Value.Kind != KindNested {
		return Record{}, false
	}
	for _, child := range r.Value.Nested {
		if child.Header.FourCC == fourcc {
			return child, true
		}
	}
	return Record{}, false
}

// FindAll returns every direct child of a Nested record whose FourCC
// equals fourcc, in source order.
func (r Record) FindAll(fourcc FourCC) []Record {
	if r.Value.Kind != KindNested {
		return nil
	}
	var out []Record
	for _, child := range r.Value.Nested {
		if child.Header.FourCC == fourcc {
			out = append(out, child)
		}
	}
	return out
}
