package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd.AddCommand(cacheWarmCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the on-disk catalog cache used for recipe details.",
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Fetches the catalog into the cache if it is missing or expired.",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(true)
		defer a.close()

		rows, err := a.cache.Full(cmd.Context())
		if err != nil {
			a.fatal("failed to fetch catalog", err)
		}
		stats := a.cache.Stats()
		fmt.Printf("%d recipes cached (hits: %d, misses: %d)\n", len(rows), stats.Hits, stats.Misses)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drops the cached catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(true)
		defer a.close()

		err := a.cache.Invalidate(cmd.Context())
		if err != nil {
			a.fatal("failed to clear cache", err)
		}
		fmt.Println("catalog cache cleared")
	},
}
