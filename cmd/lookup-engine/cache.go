// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
	Long: `Cache manages the local SQLite result cache. Cached provider results
expire after the configured TTL and are evicted lazily on read; purge
removes them eagerly.`,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired and outdated cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		n, err := eng.cache.PurgeExpired()
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d entries.\n", n)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		n, err := eng.cache.Count()
		if err != nil {
			return err
		}
		fmt.Printf("%d entries in %s (TTL %s)\n", n, eng.cfg.Cache.Path, eng.cfg.Cache.TTL)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheStatsCmd)

	rootCmd.AddCommand(cacheCmd)
}
