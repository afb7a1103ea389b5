package mp4demux

import (
	"encoding/binary"
	"fmt"
	"io"
)

var (
	fccFtyp = [4]byte{'f', 't', 'y', 'p'}
	fccMoov = [4]byte{'m', 'o', 'o', 'v'}
	fccTrak = [4]byte{'t', 'r', 'a', 'k'}
	fccMdia = [4]byte{'m', 'd', 'i', 'a'}
	fccHdlr = [4]byte{'h', 'd', 'l', 'r'}
	fccMinf = [4]byte{'m', 'i', 'n', 'f'}
	fccStbl = [4]byte{'s', 't', 'b', 'l'}
	fccStsz = [4]byte{'s', 't', 's', 'z'}
	fccStsc = [4]byte{'s', 't', 's', 'c'}
	fccStco = [4]byte{'s', 't', 'c', 'o'}
	fccCo64 = [4]byte{'c', 'o', '6', '4'}

	// metaHandlerType is the ISO-BMFF handler type GoPro's firmware stamps
	// on the GPMF telemetry track's mdia/hdlr box.
	metaHandlerType = [4]byte{'m', 'e', 't', 'a'}
)

// SampleInfo is the absolute byte offset and size of one GPMF sample
// within the container file.
type SampleInfo struct {
	Offset int64
	Size   int64
}

// Track is a flattened sample table for one MP4 metadata track.
type Track struct {
	Samples []SampleInfo
}

// Sample returns an io.SectionReader over the i'th sample's bytes,
// directly usable as the GPMF decoder's byte source. src need only
// implement io.ReaderAt, so samples from the same track may be decoded
// concurrently (the core parser holds no shared state — spec §5).
func (t *Track) Sample(src io.ReaderAt, i int) (*io.SectionReader, error) {
	if i < 0 || i >= len(t.Samples) {
		return nil, fmt.Errorf("mp4demux: sample index %d out of range [0,%d)", i, len(t.Samples))
	}
	s := t.Samples[i]
	return io.NewSectionReader(src, s.Offset, s.Size), nil
}

// FindGPMFTrack walks r's box tree for the first trak whose mdia/hdlr
// handler type is "meta" (the handler type GoPro stamps on its GPMF
// track) and builds its flattened sample table from stsz/stsc/stco
// (or co64).
func FindGPMFTrack(r io.ReadSeeker) (*Track, error) {
	fileEnd, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("mp4demux: seeking to end: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("mp4demux: seeking to start: %w", err)
	}

	root := box{offset: 0, size: fileEnd, headerSize: 0}

	moov, ok, err := findChild(r, &root, fccMoov)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTrackNotFound
	}

	var track *Track
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

		samples, err := buildSampleTable(r, &stbl)
		if err != nil {
			return false, err
		}
		track = &Track{Samples: samples}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}
	return track, nil
}

// isMetaHandler reads hdlr's handler_type field (FullBox(4) +
// pre_defined(4) + handler_type(4) + ...) and reports whether it is "meta".
func isMetaHandler(r io.ReadSeeker, hdlr *box) bool {
	if err := hdlr.seekToPayload(r); err != nil {
		return false
	}
	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false
	}
	var handlerType [4]byte
	copy(handlerType[:], buf[8:12])
	return handlerType == metaHandlerType
}

// buildSampleTable constructs a flat sample list from the stco/co64,
// stsc, and stsz boxes within stbl.
func buildSampleTable(r io.ReadSeeker, stbl *box) ([]SampleInfo, error) {
	chunkOffsets, err := readChunkOffsets(r, stbl)
	if err != nil {
		return nil, err
	}
	stscEntries, err := readStsc(r, stbl)
	if err != nil {
		return nil, err
	}
	entrySizes, constantSize, sampleCount, err := readStsz(r, stbl)
	if err != nil {
		return nil, err
	}

	samples := make([]SampleInfo, 0, sampleCount)
	sampleIdx := 0
	for chunkIdx := range chunkOffsets {
		samplesInChunk := lookupSamplesPerChunk(stscEntries, uint32(chunkIdx+1))
		offset := chunkOffsets[chunkIdx]
		for i := uint32(0); i < samplesInChunk && sampleIdx < int(sampleCount); i++ {
			var size uint32
			if constantSize != 0 {
				size = constantSize
			} else {
				size = entrySizes[sampleIdx]
			}
			samples = append(samples, SampleInfo{Offset: offset, Size: int64(size)})
			offset += int64(size)
			sampleIdx++
		}
	}
	return samples, nil
}

type stscEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
}

func lookupSamplesPerChunk(entries []stscEntry, chunkNumber uint32) uint32 {
	var samplesPerChunk uint32
	for _, e := range entries {
		if e.FirstChunk > chunkNumber {
			break
		}
		samplesPerChunk = e.SamplesPerChunk
	}
	return samplesPerChunk
}

func readChunkOffsets(r io.ReadSeeker, stbl *box) ([]int64, error) {
	if stco, ok, err := findChild(r, stbl, fccStco); err == nil && ok {
		return readStco(r, &stco)
	}
	co64, ok, err := findChild(r, stbl, fccCo64)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoCo
	}
	return readCo64(r, &co64)
}

func readStco(r io.ReadSeeker, b *box) ([]int64, error) {
	if err := b.seekToPayload(r); err != nil {
		return nil, err
	}
	var header [fullBoxSize + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	count := binary.BigEndian.Uint32(header[fullBoxSize:])
	buf := make([]byte, int(count)*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	offsets := make([]int64, count)
	for i := range offsets {
		offsets[i] = int64(binary.BigEndian.Uint32(buf[i*4:]))
	}
	return offsets, nil
}

func readCo64(r io.ReadSeeker, b *box) ([]int64, error) {
	if err := b.seekToPayload(r); err != nil {
		return nil, err
	}
	var header [fullBoxSize + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	count := binary.BigEndian.Uint32(header[fullBoxSize:])
	buf := make([]byte, int(count)*8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	offsets := make([]int64, count)
	for i := range offsets {
		offsets[i] = int64(binary.BigEndian.Uint64(buf[i*8:]))
	}
	return offsets, nil
}

func readStsc(r io.ReadSeeker, stbl *box) ([]stscEntry, error) {
	b, ok, err := findChild(r, stbl, fccStsc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoStsc
	}
	if err := b.seekToPayload(r); err != nil {
		return nil, err
	}
	var header [fullBoxSize + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	count := binary.BigEndian.Uint32(header[fullBoxSize:])

	const entryBytes = 12
	buf := make([]byte, int(count)*entryBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	entries := make([]stscEntry, count)
	for i := range entries {
		off := i * entryBytes
		entries[i] = stscEntry{
			FirstChunk:      binary.BigEndian.Uint32(buf[off:]),
			SamplesPerChunk: binary.BigEndian.Uint32(buf[off+4:]),
		}
	}
	return entries, nil
}

// readStsz returns per-sample sizes, or (nil, constantSize, count) when
// every sample shares one size.
func readStsz(r io.ReadSeeker, stbl *box) ([]uint32, uint32, uint32, error) {
	b, ok, err := findChild(r, stbl, fccStsz)
	if err != nil {
		return nil, 0, 0, err
	}
	if !ok {
		return nil, 0, 0, errNoStsz
	}
	if err := b.seekToPayload(r); err != nil {
		return nil, 0, 0, err
	}
	var header [fullBoxSize + 8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, 0, 0, err
	}
	sampleSize := binary.BigEndian.Uint32(header[fullBoxSize:])
	sampleCount := binary.BigEndian.Uint32(header[fullBoxSize+4:])

	if sampleSize != 0 {
		return nil, sampleSize, sampleCount, nil
	}

	buf := make([]byte, int(sampleCount)*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, 0, 0, err
	}
	sizes := make([]uint32, sampleCount)
	for i := range sizes {
		sizes[i] = binary.BigEndian.Uint32(buf[i*4:])
	}
	return sizes, 0, sampleCount, nil
}
