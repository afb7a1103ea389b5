package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/James2022-rgb/gpmf-tools/internal/gpx"
	"github.com/spf13/cobra"
)

var gpxOutput string

var gpxCmd = &cobra.Command{
	Use:   "gpx <file.mp4>",
	Short: "Export a GPMF file's GPS9 track to GPX 1.1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		fixes, err := loadFixes(path)
		if err != nil {
			return err
		}

		out := gpxOutput
		if out == "" {
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			out = stem + ".gpx"
		}

		outFile, err := os.Create(out)
		if err != nil {
			return err
		}
		defer outFile.Close()

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		meta := gpx.Meta{Name: stem, Desc: "Exported by gpmftool"}
		if err := gpx.Write(outFile, fixes, meta); err != nil {
			return err
		}
		logVerbose("wrote %s", out)
		return nil
	},
}

func init() {
	gpxCmd.Flags().StringVarP(&gpxOutput, "output", "o", "", "output .gpx path (default: <input>.gpx)")
}
