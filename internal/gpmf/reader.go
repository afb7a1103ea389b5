package gpmf

import (
	"encoding/binary"
	"io"
	"math"
)

// primitiveReader reads fixed-width big-endian values from a seekable byte
// source and handles GPMF's 4-byte payload padding. It is the lowest layer
// of the decoder (spec §4.1): every multi-byte read below goes through
// readExact, so a short read anywhere surfaces as the same io.EOF /
// io.ErrUnexpectedEOF the caller classifies by context.
type primitiveReader struct {
	src io.ReadSeeker
}

func newPrimitiveReader(src io.ReadSeeker) *primitiveReader {
	return &primitiveReader{src: src}
}

// tell returns the reader's absolute position, used to bound nested
// containers.
func (r *primitiveReader) tell() (int64, error) {
	return r.src.Seek(0, io.SeekCurrent)
}

// readExact reads exactly n bytes or returns io.EOF (n bytes requested,
// zero available) / io.ErrUnexpectedEOF (some but not all available).
func (r *primitiveReader) readExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *primitiveReader) readU8() (uint8, error) {
	b, err := r.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *primitiveReader) readI8() (int8, error) {
	v, err := r.readU8()
	return int8(v), err
}

func (r *primitiveReader) readU16BE() (uint16, error) {
	b, err := r.readExact(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *primitiveReader) readI16BE() (int16, error) {
	v, err := r.readU16BE()
	return int16(v), err
}

func (r *primitiveReader) readU32BE() (uint32, error) {
	b, err := r.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *primitiveReader) readI32BE() (int32, error) {
	v, err := r.readU32BE()
	return int32(v), err
}

func (r *primitiveReader) readU64BE() (uint64, error) {
	b, err := r.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *primitiveReader) readF32BE() (float32, error) {
	bits, err := r.readU32BE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// skipPadding discards (-payloadLen) mod 4 bytes (0..3) following a payload
// of payloadLen bytes already consumed.
func (r *primitiveReader) skipPadding(payloadLen int) error {
	pad := roundUp4(payloadLen) - payloadLen
	if pad == 0 {
		return nil
	}
	_, err := r.readExact(pad)
	return err
}
