package main

import (
	"fmt"
	"os"

	"github.com/James2022-rgb/gpmf-tools/internal/report"
	"github.com/spf13/cobra"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report <file.mp4>",
	Short: "Print summary stats, and optionally render an HTML chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		fixes, err := loadFixes(path)
		if err != nil {
			return err
		}

		summary := report.Summarize(fixes)
		fmt.Printf("fixes:         %d\n", summary.Count)
		if summary.Count > 0 {
			fmt.Printf("time span:     %s .. %s\n", summary.Start.Format("15:04:05"), summary.End.Format("15:04:05"))
			fmt.Printf("altitude (m):  %.2f .. %.2f\n", summary.MinAltitude, summary.MaxAltitude)
			fmt.Printf("speed_2d(m/s): %.2f .. %.2f (p50=%.2f p85=%.2f p98=%.2f)\n",
				summary.MinSpeed2D, summary.MaxSpeed2D, summary.Speed2DP50, summary.Speed2DP85, summary.Speed2DP98)
		}

		if reportOutput == "" {
			return nil
		}
		outFile, err := os.Create(reportOutput)
		if err != nil {
			return err
		}
		defer outFile.Close()
		if err := report.WriteChart(outFile, fixes); err != nil {
			return err
		}
		logVerbose("wrote %s", reportOutput)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "optional .html chart path")
}
