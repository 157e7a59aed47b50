package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/heissler3/getnzbs/internal/config"
	"github.com/heissler3/getnzbs/internal/db"
	"github.com/heissler3/getnzbs/internal/downloader"
	"github.com/heissler3/getnzbs/internal/newznab"
	"github.com/heissler3/getnzbs/internal/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search for releases",
	Long: `Search a configured Newznab server for releases matching the terms.

Without terms, pick a past search from history to repeat. By default an
interactive selector shows the results: space queues an item, enter
retrieves everything queued.

Examples:
  getnzbs search ubuntu server iso
  getnzbs search -s geek -l 50 linux
  getnzbs search -t --tvdb 81189 -S 5 "breaking bad"
  getnzbs search -m --imdb tt0133093
  getnzbs search --book --author tolkien
  getnzbs search -a --alpha mushishi
  getnzbs search --no-interactive debian`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringP("server", "s", "", "server to query (default: first configured)")
	searchCmd.Flags().IntP("limit", "l", 0, "limit number of results returned")
	searchCmd.Flags().IntP("offset", "o", 0, "skip the first N results")
	searchCmd.Flags().String("cat", "", "category to search")
	searchCmd.Flags().BoolP("tv", "t", false, "search tv shows")
	searchCmd.Flags().BoolP("movie", "m", false, "search movies")
	searchCmd.Flags().Bool("book", false, "search books")
	searchCmd.Flags().Bool("music", false, "search music")
	searchCmd.Flags().StringP("season", "S", "", "season number (requires -t)")
	searchCmd.Flags().StringP("episode", "E", "", "episode number (requires -t and -S)")
	searchCmd.Flags().String("imdb", "", "imdb.com id (implies -m)")
	searchCmd.Flags().String("tvdb", "", "tvdb.com id (implies -t)")
	searchCmd.Flags().String("author", "", "author (implies --book)")
	searchCmd.Flags().String("artist", "", "artist (implies --music)")
	searchCmd.Flags().BoolP("anime", "a", false, "shorthand for category 5070: Anime")
	searchCmd.Flags().BoolP("comics", "c", false, "shorthand for category 7030: Comics")
	searchCmd.Flags().Bool("alpha", false, "sort results alphabetically")
	searchCmd.Flags().BoolP("reverse", "r", false, "reverse result order")
	searchCmd.Flags().Bool("no-interactive", false, "disable interactive mode, just print results")
	searchCmd.Flags().StringP("dest", "d", "", "destination directory for fetched NZBs")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	serverName, _ := cmd.Flags().GetString("server")
	server, err := config.ServerByName(serverName)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	params := buildParams(cmd, query)

	// No terms and no id-based search: repeat something from history
	if query == "" && params.IMDBID == "" && params.TVDBID == "" &&
		params.Author == "" && params.Artist == "" {
		entry, err := pickFromHistory()
		if err != nil {
			return err
		}
		if entry == nil {
			return nil // user cancelled
		}
		query = entry.Query
		params = paramsFromHistory(entry)
	}

	cfg := config.Get()
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Defaults.MaxResults
	}
	offset, _ := cmd.Flags().GetInt("offset")
	params.Query = query
	params.Limit = limit
	params.Offset = offset

	Printf("Searching %s for: %s\n", server.Name, query)

	client := newznab.NewClient(server)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	releases, err := searchWithCache(ctx, client, server, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	recordHistory(query, server.Name, len(releases), params)

	if len(releases) == 0 {
		fmt.Println("No results.")
		return nil
	}

	Printf("%d result(s) returned\n", len(releases))

	alpha, _ := cmd.Flags().GetBool("alpha")
	reverse, _ := cmd.Flags().GetBool("reverse")
	if alpha {
		sort.SliceStable(releases, func(i, j int) bool {
			return releases[i].Title < releases[j].Title
		})
	}
	if reverse {
		for i, j := 0, len(releases)-1; i < j; i, j = i+1, j-1 {
			releases[i], releases[j] = releases[j], releases[i]
		}
	}

	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	if noInteractive {
		printReleases(releases)
		return nil
	}

	// Load-more walks the next page of the same query
	nextOffset := params.Offset + len(releases)
	loadMore := func() ([]newznab.Release, error) {
		moreParams := params
		moreParams.Offset = nextOffset
		moreParams.Limit = client.PageSize()

		moreCtx, moreCancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer moreCancel()

		more, err := client.Search(moreCtx, moreParams)
		if err != nil {
			return nil, err
		}
		nextOffset += len(more)
		return more, nil
	}

	title := fmt.Sprintf("%s: %d results", server.Name, len(releases))
	selected, err := tui.RunSelector(releases, title, loadMore)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	if selected == nil {
		return nil // user cancelled
	}

	destDir, _ := cmd.Flags().GetString("dest")
	if destDir == "" {
		destDir = cfg.Defaults.DestinationDirectory
	}

	return fetchReleases(cmd.Context(), selected, destDir)
}

// buildParams maps the typed-search flags onto Newznab query parameters
func buildParams(cmd *cobra.Command, query string) newznab.SearchParams {
	get := func(name string) string { v, _ := cmd.Flags().GetString(name); return v }
	getBool := func(name string) bool { v, _ := cmd.Flags().GetBool(name); return v }

	params := newznab.SearchParams{
		Query: query,
		Type:  newznab.TypeSearch,
	}

	switch {
	case getBool("tv") || get("tvdb") != "":
		params.Type = newznab.TypeTVSearch
		params.TVDBID = get("tvdb")
		params.Season = get("season")
		if params.Season != "" {
			params.Episode = get("episode")
		}
	case getBool("movie") || get("imdb") != "":
		params.Type = newznab.TypeMovie
		params.IMDBID = strings.TrimPrefix(get("imdb"), "tt")
	case getBool("book") || get("author") != "":
		params.Type = newznab.TypeBook
		params.Category = newznab.CategoryEbooks
		params.Author = get("author")
	case getBool("music") || get("artist") != "":
		params.Type = newznab.TypeMusic
		params.Category = newznab.CategoryMusic
		params.Artist = get("artist")
	}

	switch {
	case getBool("anime"):
		params.Category = newznab.CategoryAnime
	case getBool("comics"):
		params.Category = newznab.CategoryComics
	case get("cat") != "":
		params.Category = get("cat")
	}

	return params
}

// searchWithCache consults the sqlite result cache before querying
func searchWithCache(ctx context.Context, client *newznab.Client, server *config.ServerConfig, params newznab.SearchParams) ([]newznab.Release, error) {
	cfg := config.Get()
	if !cfg.Cache.Enabled {
		return client.Search(ctx, params)
	}

	key := db.GenerateCacheKey(server.Name, params.Query, params)
	if entry, err := db.GetCachedSearch(key); err == nil && entry != nil {
		var releases []newznab.Release
		if err := json.Unmarshal([]byte(entry.ResultsJSON), &releases); err == nil {
			Printf("Using cached results (%s old)\n", time.Since(entry.CreatedAt).Round(time.Second))
			return releases, nil
		}
	}

	releases, err := client.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	if resultsJSON, err := json.Marshal(releases); err == nil {
		db.SaveCachedSearch(key, params.Query, server.Name, string(resultsJSON), len(releases), cfg.Cache.TTL)
	}

	return releases, nil
}

func pickFromHistory() (*db.SearchHistory, error) {
	entries, err := db.GetUniqueSearchHistory(20)
	if err != nil {
		return nil, fmt.Errorf("reading search history: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("search terms required (no history to repeat)")
	}
	return tui.RunHistorySelector(entries)
}

func paramsFromHistory(entry *db.SearchHistory) newznab.SearchParams {
	return newznab.SearchParams{
		Query:    entry.Query,
		Type:     entry.Params.Type,
		Category: entry.Params.Category,
		Season:   entry.Params.Season,
		Episode:  entry.Params.Episode,
		IMDBID:   entry.Params.IMDBID,
		TVDBID:   entry.Params.TVDBID,
		Author:   entry.Params.Author,
		Artist:   entry.Params.Artist,
	}
}

func recordHistory(query, server string, resultCount int, params newznab.SearchParams) {
	if query == "" {
		return
	}
	err := db.AddSearchHistory(query, server, resultCount, db.SearchHistoryParams{
		Type:     params.Type,
		Category: params.Category,
		Season:   params.Season,
		Episode:  params.Episode,
		IMDBID:   params.IMDBID,
		TVDBID:   params.TVDBID,
		Author:   params.Author,
		Artist:   params.Artist,
	})
	if err != nil {
		Printf("Could not record search history: %v\n", err)
	}
}

// fetchReleases retrieves each selected release and records the outcome
func fetchReleases(ctx context.Context, releases []newznab.Release, destDir string) error {
	mgr := downloader.NewManager()

	var failed int
	for _, rel := range releases {
		fmt.Printf("Fetching: %s\n", rel.Title)

		path, err := mgr.Fetch(ctx, rel.Title, rel.DownloadURL, destDir)

		record := &db.Fetch{
			GUID:        rel.GUID,
			Title:       rel.Title,
			Server:      rel.Server,
			Category:    rel.Category,
			Size:        rel.Size,
			DownloadURL: rel.DownloadURL,
			FilePath:    path,
			Status:      db.FetchOK,
		}
		if err != nil {
			record.Status = db.FetchFailed
			record.ErrorMessage = err.Error()
			failed++
			Errorf("%s: %v", rel.Title, err)
		} else {
			Successf("Saved: %s", path)
		}
		if dbErr := db.RecordFetch(record); dbErr != nil {
			Printf("Could not record fetch: %v\n", dbErr)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fetches failed", failed, len(releases))
	}
	return nil
}

// printReleases prints releases in a simple format
func printReleases(releases []newznab.Release) {
	for i, rel := range releases {
		fmt.Printf("%4d. %s\n", i+1, rel.Title)

		var details []string
		if rel.Category != "" {
			details = append(details, rel.Category)
		}
		if rel.Size > 0 {
			details = append(details, humanize.IBytes(uint64(rel.Size)))
		}
		if !rel.PublishDate.IsZero() {
			details = append(details, rel.PublishDate.Format("02 Jan 2006"))
		}
		if len(details) > 0 {
			fmt.Printf("      %s\n", strings.Join(details, " | "))
		}
	}
}
