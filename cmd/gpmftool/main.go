// Command gpmftool decodes GoPro GPMF telemetry out of MP4 files and
// exports it to GPX, CSV, or an HTML summary report.
package main

import "os"

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
