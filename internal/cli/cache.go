package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/config"
	"github.com/heissler3/getnzbs/internal/db"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and control the result cache",
	Long: `Search results are kept in sqlite so repeating a query within the
cache TTL does not hit the server again. Each entry carries its own
expiry; expired rows linger until cleaned.

Examples:
  getnzbs cache stats
  getnzbs cache clean
  getnzbs cache disable`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the cache is holding",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := db.GetCacheStats()
		if err != nil {
			return fmt.Errorf("reading cache state: %w", err)
		}

		cfg := config.Get()
		state := "disabled"
		if cfg.Cache.Enabled {
			state = fmt.Sprintf("enabled, TTL %v", cfg.Cache.TTL)
		}

		fmt.Printf("Cache: %s\n", state)
		fmt.Printf("Entries: %d (%d live, %d expired)\n",
			stats.Total, stats.Total-stats.Expired, stats.Expired)

		if stats.Total > 0 {
			fmt.Printf("Newest entry: %v old\n", time.Since(stats.Newest).Round(time.Second))
			fmt.Printf("Oldest entry: %v old\n", time.Since(stats.Oldest).Round(time.Second))

			servers := make([]string, 0, len(stats.ByServer))
			for s := range stats.ByServer {
				servers = append(servers, s)
			}
			sort.Strings(servers)

			fmt.Println("\nPer server:")
			for _, s := range servers {
				name := s
				if name == "" {
					name = "(unnamed)"
				}
				fmt.Printf("  %-16s %d\n", name, stats.ByServer[s])
			}
		}

		if stats.Expired > 0 {
			fmt.Println("\n'getnzbs cache clean' drops the expired rows.")
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached result",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := db.ClearSearchCache()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		Successf("Dropped %d cached result set(s)", n)
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop only the expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := db.CleanExpiredCache()
		if err != nil {
			return fmt.Errorf("cleaning cache: %w", err)
		}
		Successf("Dropped %d expired result set(s)", n)
		return nil
	},
}

var cacheEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn result caching on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCaching(true)
	},
}

var cacheDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn result caching off",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCaching(false)
	},
}

func setCaching(on bool) error {
	value, word := "false", "disabled"
	if on {
		value, word = "true", "enabled"
	}
	if err := config.Set("cache.enabled", value); err != nil {
		return fmt.Errorf("updating config: %w", err)
	}
	Successf("Caching %s", word)
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	cacheCmd.AddCommand(cacheEnableCmd)
	cacheCmd.AddCommand(cacheDisableCmd)
}
