package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/James2022-rgb/gpmf-tools/internal/gpmf"
	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
	"github.com/James2022-rgb/gpmf-tools/internal/mp4demux"
	"github.com/spf13/cobra"
)

var (
	sampleOutput string
	sampleCount  int
)

var fourCCDEVC = gpmf.MustFourCC("DEVC")

var sampleCmd = &cobra.Command{
	Use:   "sample <file.mp4>",
	Short: "Best-effort truncate a GPMF file to its first N GPS9 fixes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sampleCount <= 0 {
			return fmt.Errorf("sample: -n must be positive")
		}
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		track, err := mp4demux.FindGPMFTrack(bytes.NewReader(data))
		if err != nil {
			return err
		}

		keepSamples := len(track.Samples)
		fixesSeen := 0
		for i := range track.Samples {
			sr, err := track.Sample(bytes.NewReader(data), i)
			if err != nil {
				return err
			}
			records, err := gpmf.ParseStream(sr)
			if err != nil {
				return err
			}
			for _, rec := range records {
				if rec.Header.FourCC != fourCCDEVC {
					continue
				}
				if _, err := gps9.Project(rec); err == nil {
					fixesSeen++
				}
			}
			if fixesSeen >= sampleCount {
				keepSamples = i + 1
				break
			}
		}

		truncated, err := mp4demux.TruncateSampleCount(data, keepSamples)
		if err != nil {
			return err
		}

		out := sampleOutput
		if out == "" {
			out = "sample_" + path
		}
		if err := os.WriteFile(out, truncated, 0644); err != nil {
			return err
		}

		actual := fixesSeen
		if actual > sampleCount {
			actual = sampleCount
		}
		fmt.Printf("sample: %s (%d bytes, %d GPS9 fixes, %d samples)\n", out, len(truncated), actual, keepSamples)
		return nil
	},
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleCount, "count", "n", 0, "number of GPS9 fixes to keep")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "output .mp4 path (default: sample_<input>)")
}
