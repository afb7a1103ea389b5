package main

import (
	"fmt"
	"sort"

	"github.com/James2022-rgb/gpmf-tools/internal/report"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file.mp4>",
	Short: "Print a DEVC/STRM/record summary for a GPMF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, f, err := decodeFile(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		fmt.Printf("samples:      %d\n", result.SampleCount)
		fmt.Printf("DEVC records: %d\n", result.DEVCCount)
		fmt.Printf("GPS9 fixes:   %d\n", len(result.Fixes))
		if result.MultiSampleGPS9Count > 0 {
			fmt.Printf("warning: %d DEVC record(s) carried more than one GPS9 sample; only the first of each was projected\n", result.MultiSampleGPS9Count)
		}

		fmt.Println("\nrecord histogram:")
		type count struct {
			fourcc string
			n      int
		}
		counts := make([]count, 0, len(result.RecordCounts))
		for fourcc, n := range result.RecordCounts {
			counts = append(counts, count{fourcc: fourcc.String(), n: n})
		}
		sort.Slice(counts, func(i, j int) bool { return counts[i].fourcc < counts[j].fourcc })
		for _, c := range counts {
			fmt.Printf("  %-4s %d\n", c.fourcc, c.n)
		}

		summary := report.Summarize(result.Fixes)
		if summary.Count == 0 {
			return nil
		}
		fmt.Println("\nfix ranges:")
		fmt.Printf("  altitude (m):  %.2f .. %.2f\n", summary.MinAltitude, summary.MaxAltitude)
		fmt.Printf("  speed_2d(m/s): %.2f .. %.2f\n", summary.MinSpeed2D, summary.MaxSpeed2D)
		fmt.Printf("  time span:     %s .. %s\n", summary.Start.Format("15:04:05"), summary.End.Format("15:04:05"))
		return nil
	},
}
