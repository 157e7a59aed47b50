package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/config"
	"github.com/heissler3/getnzbs/internal/newznab"
	"github.com/heissler3/getnzbs/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [terms...]",
	Short: "Browse server categories",
	Long: `Retrieve the server's category list and pick one, then search
within it. Terms are optional; without them the whole category is listed
up to the result limit.

Examples:
  getnzbs browse
  getnzbs browse -s geek linux
  getnzbs browse -l 100`,
	Args: cobra.ArbitraryArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringP("server", "s", "", "server to query (default: first configured)")
	browseCmd.Flags().IntP("limit", "l", 0, "limit number of results returned")
	browseCmd.Flags().Bool("no-interactive", false, "disable interactive result mode, just print results")
	browseCmd.Flags().StringP("dest", "d", "", "destination directory for fetched NZBs")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	serverName, _ := cmd.Flags().GetString("server")
	server, err := config.ServerByName(serverName)
	if err != nil {
		return err
	}

	client := newznab.NewClient(server)

	Printf("Retrieving category list from %s\n", server.Name)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	categories, err := client.Caps(ctx)
	if err != nil {
		return fmt.Errorf("could not retrieve categories: %w", err)
	}

	category, err := tui.RunCategorySelector(categories)
	if err != nil {
		return err
	}
	if category == nil {
		return nil // user cancelled
	}

	cfg := config.Get()
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Defaults.MaxResults
	}

	params := newznab.SearchParams{
		Query:    strings.Join(args, " "),
		Type:     newznab.TypeSearch,
		Category: category.ID,
		Limit:    limit,
	}

	searchCtx, searchCancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer searchCancel()

	releases, err := searchWithCache(searchCtx, client, server, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(releases) == 0 {
		fmt.Println("No results.")
		return nil
	}

	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	if noInteractive {
		printReleases(releases)
		return nil
	}

	title := fmt.Sprintf("%s / %s: %d results", server.Name, category.Name, len(releases))
	selected, err := tui.RunSelector(releases, title, nil)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	if selected == nil {
		return nil
	}

	destDir, _ := cmd.Flags().GetString("dest")
	if destDir == "" {
		destDir = cfg.Defaults.DestinationDirectory
	}

	return fetchReleases(cmd.Context(), selected, destDir)
}
