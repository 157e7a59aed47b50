package newznab

import "time"

// Search types understood by Newznab servers.
const (
	TypeSearch   = "search"
	TypeTVSearch = "tvsearch"
	TypeMovie    = "movie"
	TypeBook     = "book"
	TypeMusic    = "music"
)

// Well-known category IDs used by the CLI shortcuts.
const (
	CategoryAnime  = "5070"
	CategoryEbooks = "7020"
	CategoryComics = "7030"
	CategoryMusic  = "3010,3040"
)

// Release is one search result from an indexer.
type Release struct {
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	DownloadURL string    `json:"download_url"`
	Size        int64     `json:"size"`
	PublishDate time.Time `json:"publish_date"`
	Server      string    `json:"server"`
}

// Category is one entry from a server's caps listing.
// Sub marks subcategories nested under the preceding main category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Sub  bool   `json:"sub"`
}

// SearchParams describes one query. Type selects the Newznab search
// function; the ID and season/episode fields only apply to some types.
type SearchParams struct {
	Query    string
	Type     string
	Category string
	Season   string
	Episode  string
	IMDBID   string
	TVDBID   string
	Author   string
	Artist   string
	Offset   int
	Limit    int
}
