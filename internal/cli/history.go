package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show search and fetch history",
	Long: `Show recent searches and fetched NZBs.

Examples:
  getnzbs history              Recent searches
  getnzbs history -n 50        More of them
  getnzbs history fetches      Fetched NZBs
  getnzbs history clear        Forget all search history
  getnzbs history clear --days 30   Only forget older entries`,
	RunE: runHistoryList,
}

var historyFetchesCmd = &cobra.Command{
	Use:   "fetches",
	Short: "List fetched NZBs",
	RunE:  runHistoryFetches,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear search history",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days > 0 {
			if err := db.DeleteSearchHistoryOlderThan(time.Duration(days) * 24 * time.Hour); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			Successf("Search history older than %d day(s) cleared", days)
			return nil
		}
		if err := db.ClearSearchHistory(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		Successf("Search history cleared")
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show")
	historyFetchesCmd.Flags().IntP("limit", "n", 20, "number of entries to show")
	historyClearCmd.Flags().Int("days", 0, "only clear entries older than this many days")

	historyCmd.AddCommand(historyFetchesCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := db.GetUniqueSearchHistory(limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No search history.")
		return nil
	}

	fmt.Printf("Recent searches (%d):\n\n", len(entries))
	for i, e := range entries {
		fmt.Printf("  %2d. %s\n", i+1, e.Query)
		fmt.Printf("      %s • %d results • %s\n",
			e.Server, e.ResultCount, e.CreatedAt.Format("02 Jan 2006 15:04"))
	}

	fmt.Println()
	fmt.Println("Run 'getnzbs search' with no terms to repeat one interactively.")
	return nil
}

func runHistoryFetches(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	fetches, err := db.ListFetches(limit)
	if err != nil {
		return fmt.Errorf("failed to read fetches: %w", err)
	}

	if len(fetches) == 0 {
		fmt.Println("Nothing fetched yet.")
		return nil
	}

	fmt.Printf("Fetched NZBs (%d):\n\n", len(fetches))
	for i, f := range fetches {
		title := f.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}

		status := "✓"
		if f.Status == db.FetchFailed {
			status = "✗"
		}

		fmt.Printf("  %2d. %s %s\n", i+1, status, title)

		detail := f.Server
		if f.Size > 0 {
			detail += " • " + humanize.IBytes(uint64(f.Size))
		}
		if f.Status == db.FetchFailed && f.ErrorMessage != "" {
			detail += " • " + f.ErrorMessage
		} else if f.FilePath != "" {
			detail += " • " + f.FilePath
		}
		fmt.Printf("      %s\n", detail)
		fmt.Printf("      guid: %s\n", f.GUID)
	}

	return nil
}
