package main

import (
	"fmt"
	"os"

	"github.com/James2022-rgb/gpmf-tools/internal/decode"
	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
	"github.com/James2022-rgb/gpmf-tools/internal/store"
)

// decodeFile runs a fresh decode pass, bypassing the cache. The decode
// subcommand, which needs more than the fix series (the record histogram
// and counts), goes through this directly.
func decodeFile(path string) (decode.Result, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return decode.Result{}, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	logVerbose("decoding %s", path)
	result, err := decode.Run(f)
	if err != nil {
		f.Close()
		return decode.Result{}, nil, err
	}
	logVerbose("%d samples, %d DEVC records, %d GPS9 fixes", result.SampleCount, result.DEVCCount, len(result.Fixes))
	return result, f, nil
}

// loadFixes returns path's projected GPS9 fix series, consulting the decode
// cache first unless --no-cache was given.
func loadFixes(path string) ([]gps9.Fix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	key := store.Key{Path: path, Size: info.Size(), MTime: info.ModTime()}

	cache := openCache()
	if cache != nil {
		defer cache.Close()
		if fixes, err := cache.Get(key); err == nil {
			logVerbose("cache hit for %s", path)
			return fixes, nil
		}
	}

	logVerbose("decoding %s", path)
	result, err := decode.Run(f)
	if err != nil {
		return nil, err
	}
	logVerbose("%d samples, %d DEVC records, %d GPS9 fixes", result.SampleCount, result.DEVCCount, len(result.Fixes))

	if cache != nil {
		if err := cache.Put(key, result.Fixes); err != nil {
			logVerbose("cache write failed: %v", err)
		}
	}
	return result.Fixes, nil
}

// openCache opens the decode cache, or returns nil when --no-cache was
// given or the cache database could not be opened. A broken cache is never
// fatal: every subcommand works identically without one.
func openCache() *store.Store {
	if noCache {
		return nil
	}
	cache, err := openCacheOrError()
	if err != nil {
		logVerbose("cache unavailable, continuing without it: %v", err)
		return nil
	}
	return cache
}
