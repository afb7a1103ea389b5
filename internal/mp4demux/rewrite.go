package mp4demux

import (
	"bytes"
	"encoding/binary"
	"io"
)

// TruncateSampleCount returns a copy of data whose GPMF metadata track's
// sample table reports at most keep samples, by patching stsz's
// sampleCount field in place. No other box is moved or resized: every
// existing stco/co64 offset stays valid since nothing shifts, and the
// dropped samples' bytes are left in the copy, just unreferenced by the
// shrunk table, rather than physically removed. A byte-for-byte remux that
// also shrinks mdat is out of scope — this is the best-effort truncation
// mirroring the teacher's RKD sample generator, which likewise trims the
// record stream in place rather than rewriting file offsets.
func TruncateSampleCount(data []byte, keep int) ([]byte, error) {
	r := bytes.NewReader(data)
	root := box{offset: 0, size: int64(len(data))}

	moov, ok, err := findChild(r, &root, fccMoov)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTrackNotFound
	}

	var sampleCountOffset int64 = -1
	var newCount uint32

	err = iterChildren(r, &moov, func(trak box) (bool, error) {
		if trak.fourCC != fccTrak {
			return false, nil
		}

		hdlr, ok, err := findDescendant(r, &trak, fccMdia, fccHdlr)
		if err != nil {
			return false, err
		}
		if !ok || !isMetaHandler(r, &hdlr) {
			return false, nil
		}

		stbl, ok, err := findDescendant(r, &trak, fccMdia, fccMinf, fccStbl)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, errNoStbl
		}

		stsz, ok, err := findChild(r, &stbl, fccStsz)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, errNoStsz
		}

		if err := stsz.seekToPayload(r); err != nil {
			return false, err
		}
		var header [fullBoxSize + 8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return false, err
		}
		origCount := binary.BigEndian.Uint32(header[fullBoxSize+4:])

		newCount = origCount
		if uint32(keep) < newCount {
			newCount = uint32(keep)
		}
		sampleCountOffset = stsz.payloadOffset() + fullBoxSize + 4
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if sampleCountOffset < 0 {
		return nil, ErrTrackNotFound
	}

	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[sampleCountOffset:], newCount)
	return out, nil
}
