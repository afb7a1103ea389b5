package mp4demux

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// boxBytes builds a size+fourcc+payload box in one call.
func boxBytes(fourCC string, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(8+len(payload)))
	copy(buf[4:8], fourCC)
	copy(buf[8:], payload)
	return buf
}

func hdlrPayload(handlerType string) []byte {
	buf := make([]byte, 24)
	copy(buf[8:12], handlerType) // FullBox(4) + pre_defined(4) + handler_type(4)
	return buf
}

func stszPayload(sizes ...uint32) []byte {
	// FullBox(4) + sampleSize(4, 0 means per-entry table follows) + sampleCount(4) + entries.
	buf := make([]byte, 12+4*len(sizes))
	binary.BigEndian.PutUint32(buf[4:8], 0)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(sizes)))
	for i, s := range sizes {
		binary.BigEndian.PutUint32(buf[12+4*i:], s)
	}
	return buf
}

func stscPayload(entries ...[2]uint32) []byte {
	buf := make([]byte, 8+12*len(entries))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(entries)))
	for i, e := range entries {
		off := 8 + 12*i
		binary.BigEndian.PutUint32(buf[off:], e[0])
		binary.BigEndian.PutUint32(buf[off+4:], e[1])
	}
	return buf
}

func stcoPayload(offsets ...uint32) []byte {
	buf := make([]byte, 8+4*len(offsets))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(offsets)))
	for i, o := range offsets {
		binary.BigEndian.PutUint32(buf[8+4*i:], o)
	}
	return buf
}

// buildMinimalMP4 assembles ftyp + moov{trak{mdia{hdlr(meta), minf{stbl{stsz,stsc,stco}}}}} + mdat,
// with two 4-byte samples living in one chunk at a known offset.
func buildMinimalMP4(t *testing.T) ([]byte, int64) {
	t.Helper()

	stbl := boxBytes("stbl", append(append(
		boxBytes("stsz", stszPayload(4, 4)),
		boxBytes("stsc", stscPayload([2]uint32{1, 2})...)...),
		boxBytes("stco", stcoPayload(0 /* placeholder, patched below */))...))
	minf := boxBytes("minf", stbl)
	hdlr := boxBytes("hdlr", hdlrPayload("meta"))
	mdia := boxBytes("mdia", append(hdlr, minf...))
	trak := boxBytes("trak", mdia)
	moov := boxBytes("moov", trak)
	ftyp := boxBytes("ftyp", []byte("isommp42"))

	prefix := append(append([]byte{}, ftyp...), moov...)
	mdatOffset := int64(len(prefix)) + 8 // +8 for mdat's own header

	mdatPayload := []byte{1, 2, 3, 4, 5, 6, 7, 8} // two 4-byte samples
	mdat := boxBytes("mdat", mdatPayload)

	full := append(prefix, mdat...)

	// Patch the stco offset now that we know mdat's payload offset.
	patchStcoOffset(t, full, uint32(mdatOffset))

	return full, mdatOffset
}

// patchStcoOffset finds the single stco entry in full and overwrites it with
// offset, since the sample table is built before mdat's final position is
// known.
func patchStcoOffset(t *testing.T, full []byte, offset uint32) {
	t.Helper()
	r := bytes.NewReader(full)
	root := box{offset: 0, size: int64(len(full))}
	moov, ok, err := findChild(r, &root, fccMoov)
	if err != nil || !ok {
		t.Fatalf("patchStcoOffset: moov not found: %v", err)
	}
	stbl, ok, err := findDescendant(r, &moov, fccTrak, fccMdia, fccMinf, fccStbl)
	if err != nil || !ok {
		t.Fatalf("patchStcoOffset: stbl not found: %v", err)
	}
	stco, ok, err := findChild(r, &stbl, fccStco)
	if err != nil || !ok {
		t.Fatalf("patchStcoOffset: stco not found: %v", err)
	}
	binary.BigEndian.PutUint32(full[stco.payloadOffset()+8:], offset)
}

func TestFindGPMFTrack(t *testing.T) {
	data, mdatOffset := buildMinimalMP4(t)
	r := bytes.NewReader(data)

	track, err := FindGPMFTrack(r)
	if err != nil {
		t.Fatalf("FindGPMFTrack: %v", err)
	}
	if len(track.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(track.Samples))
	}
	if track.Samples[0].Offset != mdatOffset || track.Samples[0].Size != 4 {
		t.Errorf("sample 0 = %+v, want offset=%d size=4", track.Samples[0], mdatOffset)
	}
	if track.Samples[1].Offset != mdatOffset+4 || track.Samples[1].Size != 4 {
		t.Errorf("sample 1 = %+v, want offset=%d size=4", track.Samples[1], mdatOffset+4)
	}

	sec, err := track.Sample(bytes.NewReader(data), 1)
	if err != nil {
		t.Fatalf("Sample(1): %v", err)
	}
	got := make([]byte, 4)
	if _, err := io.ReadFull(sec, got); err != nil {
		t.Fatalf("reading sample: %v", err)
	}
	want := []byte{5, 6, 7, 8}
	if !bytes.Equal(got, want) {
		t.Errorf("sample 1 bytes = %v, want %v", got, want)
	}
}

func TestFindGPMFTrack_NoMetaHandlerIsNotFound(t *testing.T) {
	hdlr := boxBytes("hdlr", hdlrPayload("vide"))
	stsz := boxBytes("stsz", stszPayload(4))
	stsc := boxBytes("stsc", stscPayload([2]uint32{1, 1}))
	stco := boxBytes("stco", stcoPayload(100))
	stbl := boxBytes("stbl", append(append(stsz, stsc...), stco...))
	minf := boxBytes("minf", stbl)
	mdia := boxBytes("mdia", append(hdlr, minf...))
	trak := boxBytes("trak", mdia)
	moov := boxBytes("moov", trak)

	_, err := FindGPMFTrack(bytes.NewReader(moov))
	if err != ErrTrackNotFound {
		t.Fatalf("err = %v, want ErrTrackNotFound", err)
	}
}
