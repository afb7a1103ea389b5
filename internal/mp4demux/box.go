// Package mp4demux walks just enough of an ISO-BMFF (MP4) box tree to find
// the GoPro metadata track and compute the absolute file offset and size of
// every GPMF sample in it.
package mp4demux

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	smallHeaderSize = 8
	largeHeaderSize = 16
	fullBoxSize     = 4 // version(1) + flags(3)
)

// ErrTruncatedBox reports a box whose declared size is inconsistent with
// its position: smaller than its own header, or larger than the bytes
// remaining in its parent.
var ErrTruncatedBox = errors.New("mp4demux: truncated or invalid box")

// box holds the position and declared size of a parsed ISO-BMFF box.
type box struct {
	offset     int64
	size       int64
	headerSize int64
	fourCC     [4]byte
}

func (b *box) payloadOffset() int64 { return b.offset + b.headerSize }
func (b *box) payloadSize() int64   { return b.size - b.headerSize }

func (b *box) seekToPayload(r io.ReadSeeker) error {
	_, err := r.Seek(b.payloadOffset(), io.SeekStart)
	return err
}

func (b *box) seekToEnd(r io.ReadSeeker) error {
	_, err := r.Seek(b.offset+b.size, io.SeekStart)
	return err
}

// readBoxHeader reads one box header at the reader's current position.
func readBoxHeader(r io.ReadSeeker, parentEnd int64) (box, error) {
	offset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return box{}, fmt.Errorf("mp4demux: seeking current position: %w", err)
	}

	var header [largeHeaderSize]byte
	if _, err := io.ReadFull(r, header[:smallHeaderSize]); err != nil {
		return box{}, err
	}

	b := box{
		offset:     offset,
		headerSize: smallHeaderSize,
		fourCC:     [4]byte{header[4], header[5], header[6], header[7]},
	}

	rawSize := binary.BigEndian.Uint32(header[:4])
	switch rawSize {
	case 0:
		if parentEnd <= 0 {
			return box{}, fmt.Errorf("%w: size-to-end-of-file box outside a bounded parent", ErrTruncatedBox)
		}
		b.size = parentEnd - offset
	case 1:
		if _, err := io.ReadFull(r, header[smallHeaderSize:largeHeaderSize]); err != nil {
			return box{}, err
		}
		b.headerSize = largeHeaderSize
		b.size = int64(binary.BigEndian.Uint64(header[smallHeaderSize:largeHeaderSize]))
	default:
		b.size = int64(rawSize)
	}

	if b.size < b.headerSize {
		return box{}, fmt.Errorf("%w: declared size %d at offset %d is smaller than its header", ErrTruncatedBox, b.size, offset)
	}
	if parentEnd > 0 && b.offset+b.size > parentEnd {
		return box{}, fmt.Errorf("%w: box at offset %d overruns its parent's bounds", ErrTruncatedBox, offset)
	}

	return b, nil
}

// iterChildren calls visit for each direct child box within parent's
// payload, stopping early when visit returns stop == true.
func iterChildren(r io.ReadSeeker, parent *box, visit func(child box) (stop bool, err error)) error {
	if err := parent.seekToPayload(r); err != nil {
		return err
	}
	end := parent.offset + parent.size

	for {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if pos >= end {
			return nil
		}

		child, err := readBoxHeader(r, end)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		stop, err := visit(child)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		if err := child.seekToEnd(r); err != nil {
			return err
		}
	}
}

func findChild(r io.ReadSeeker, parent *box, fourCC [4]byte) (box, bool, error) {
	var found box
	var ok bool
	err := iterChildren(r, parent, func(child box) (bool, error) {
		if child.fourCC == fourCC {
			found, ok = child, true
			return true, nil
		}
		return false, nil
	})
	return found, ok, err
}

func findDescendant(r io.ReadSeeker, parent *box, path ...[4]byte) (box, bool, error) {
	current := *parent
	for _, fourCC := range path {
		child, ok, err := findChild(r, &current, fourCC)
		if err != nil {
			return box{}, false, err
		}
		if !ok {
			return box{}, false, nil
		}
		current = child
	}
	return current, true, nil
}
