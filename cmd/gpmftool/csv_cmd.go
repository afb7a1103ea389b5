package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/James2022-rgb/gpmf-tools/internal/csvexport"
	"github.com/spf13/cobra"
)

var csvOutput string

var csvCmd = &cobra.Command{
	Use:   "csv <file.mp4>",
	Short: "Export a GPMF file's GPS9 track to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		fixes, err := loadFixes(path)
		if err != nil {
			return err
		}

		out := csvOutput
		if out == "" {
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			out = stem + ".csv"
		}

		outFile, err := os.Create(out)
		if err != nil {
			return err
		}
		defer outFile.Close()

		if err := csvexport.Write(outFile, fixes); err != nil {
			return err
		}
		logVerbose("wrote %s", out)
		return nil
	},
}

func init() {
	csvCmd.Flags().StringVarP(&csvOutput, "output", "o", "", "output .csv path (default: <input>.csv)")
}
