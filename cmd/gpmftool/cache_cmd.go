package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/James2022-rgb/gpmf-tools/internal/store"
	"github.com/spf13/cobra"
)

func openCacheOrError() (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return nil, fmt.Errorf("cache directory: %w", err)
	}
	return store.Open(cachePath)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the decode cache",
}

var cacheStatCmd = &cobra.Command{
	Use:   "stat",
	Short: "Print the number of entries in the decode cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCacheOrError()
		if err != nil {
			return err
		}
		defer s.Close()

		stat, err := s.Stat()
		if err != nil {
			return err
		}
		fmt.Printf("cache:   %s\n", cachePath)
		fmt.Printf("entries: %d\n", stat.Entries)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every entry in the decode cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCacheOrError()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Clear(); err != nil {
			return err
		}
		fmt.Println("cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
