// Package decode wires the other internal packages together into the one
// operation every gpmftool subcommand ultimately needs: turn an MP4 file
// into a GPS9 fix series.
package decode

import (
	"fmt"
	"io"

	"github.com/James2022-rgb/gpmf-tools/internal/gpmf"
	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
	"github.com/James2022-rgb/gpmf-tools/internal/mp4demux"
)

var fourCCDEVC = gpmf.MustFourCC("DEVC")

// Source is what Run needs from the open file: seekable for box walking,
// ReaderAt so samples can be read (and in principle decoded concurrently)
// without disturbing each other's position.
type Source interface {
	io.ReadSeeker
	io.ReaderAt
}

// Result is everything a gpmftool subcommand needs out of one decode pass.
type Result struct {
	Fixes        []gps9.Fix
	SampleCount  int
	DEVCCount    int
	RecordCounts map[gpmf.FourCC]int
	// MultiSampleGPS9Count counts DEVC records whose GPS9 stream packed more
	// than one 32-byte sample; Project always keeps only the first, so this
	// is how a caller can surface the truncation instead of it being silent.
	MultiSampleGPS9Count int
}

// Run locates the GPMF track in src, parses every sample, and projects a
// GPS9 Fix out of every DEVC record that carries one. DEVC records without a
// usable GPS9 stream are counted but otherwise skipped, not an error: a
// GPMF stream mixing GPS9 and non-GPS9 DEVCs (e.g. a short burst of
// Ethernet-losing frames) is normal.
func Run(src Source) (Result, error) {
	track, err := mp4demux.FindGPMFTrack(src)
	if err != nil {
		return Result{}, fmt.Errorf("decode: %w", err)
	}

	result := Result{RecordCounts: make(map[gpmf.FourCC]int)}
	result.SampleCount = len(track.Samples)

	for i := range track.Samples {
		sr, err := track.Sample(src, i)
		if err != nil {
			return Result{}, fmt.Errorf("decode: sample %d: %w", i, err)
		}

		records, err := gpmf.ParseStream(sr)
		if err != nil {
			return Result{}, fmt.Errorf("decode: sample %d: %w", i, err)
		}

		for _, rec := range records {
			countRecords(rec, result.RecordCounts)
			if rec.Header.FourCC != fourCCDEVC {
				continue
			}
			result.DEVCCount++

			if n, err := gps9.SampleCount(rec); err == nil && n > 1 {
				result.MultiSampleGPS9Count++
			}

			fix, err := gps9.Project(rec)
			if err != nil {
				continue
			}
			result.Fixes = append(result.Fixes, fix)
		}
	}

	return result, nil
}

// countRecords tallies rec and, recursively, every descendant so the
// histogram reflects the whole tree, not just top-level DEVCs.
func countRecords(rec gpmf.Record, counts map[gpmf.FourCC]int) {
	counts[rec.Header.FourCC]++
	if rec.Value.Kind != gpmf.KindNested {
		return
	}
	for _, child := range rec.Value.Nested {
		countRecords(child, counts)
	}
}
