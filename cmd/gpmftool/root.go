package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	noCache   bool
	cachePath string
	runIDFlag string

	logger *log.Logger
	runID  string
)

var rootCmd = &cobra.Command{
	Use:   "gpmftool",
	Short: "Decode GoPro GPMF telemetry out of MP4 files",
	Long: `gpmftool walks an MP4 file's GPMF metadata track, projects its GPS9
samples into a fix series, and exports that series to GPX, CSV, or an
interactive HTML report.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		runID = resolveRunID()
		logger.Printf("run %s: %s starting", runID, cmd.Name())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Printf("run %s: %s done", runID, cmd.Name())
	},
}

func init() {
	logger = log.New(os.Stderr, "[gpmftool] ", log.LstdFlags)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print per-stage progress")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the decode cache entirely")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", defaultCachePath(), "path to the decode cache database")
	rootCmd.PersistentFlags().StringVar(&runIDFlag, "run-id", "", "correlation id to log for this invocation (default: generated, or reused from the cache)")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(gpxCmd)
	rootCmd.AddCommand(csvCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(cacheCmd)
}

// resolveRunID picks the correlation id to log for this invocation:
// --run-id if given, otherwise a fresh uuid, unless the decode cache already
// has one on record, in which case that recorded id is reused instead.
func resolveRunID() string {
	if runIDFlag != "" {
		return runIDFlag
	}
	candidate := uuid.NewString()
	if noCache {
		return candidate
	}
	cache, err := openCacheOrError()
	if err != nil {
		return candidate
	}
	defer cache.Close()

	id, err := cache.GetOrSetRunID(candidate)
	if err != nil {
		return candidate
	}
	return id
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "gpmftool-cache.db"
	}
	return dir + "/gpmftool/cache.db"
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		logger.Printf(format, args...)
	}
}
