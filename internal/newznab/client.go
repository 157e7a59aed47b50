package newznab

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/heissler3/getnzbs/internal/config"
)

// DefaultPageSize is used when a server declares no page_size.
// Apparently not the same for every server, 100 is the protocol default.
const DefaultPageSize = 100

// APIError is a Newznab error payload (<error code="..." description="..."/>).
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Description)
}

// Client queries one configured Newznab server.
type Client struct {
	server    config.ServerConfig
	userAgent string
	http      *http.Client
}

// NewClient creates a client for the given server using the
// configured network settings.
func NewClient(server *config.ServerConfig) *Client {
	cfg := config.Get()

	timeout := cfg.Network.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.Network.UserAgent
	if userAgent == "" {
		userAgent = "getnzbs/" + config.Version
	}

	return &Client{
		server:    *server,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// PageSize returns the server's result page size.
func (c *Client) PageSize() int {
	if c.server.PageSize > 0 {
		return c.server.PageSize
	}
	return DefaultPageSize
}

// Search runs the query and collects up to params.Limit releases,
// walking the server's pages from params.Offset. Results keep the
// server-provided order. A short page ends the walk: either that's all
// there is, or the limit has been reached. Zero matches is not an error.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Release, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	pageSize := c.PageSize()
	offset := params.Offset
	remaining := limit

	var all []Release
	for remaining > 0 {
		want := pageSize
		if remaining < pageSize {
			want = remaining
		}

		page, err := c.searchPage(ctx, params, offset, want)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < want {
			break
		}
		offset += len(page)
		remaining -= len(page)
	}

	// Some servers ignore the limit param and return full pages anyway
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (c *Client) searchPage(ctx context.Context, params SearchParams, offset, limit int) ([]Release, error) {
	q := url.Values{}
	q.Set("t", searchType(params.Type))
	if c.server.APIKey != "" {
		q.Set("apikey", c.server.APIKey)
	}
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	if params.Category != "" {
		q.Set("cat", params.Category)
	}
	if params.TVDBID != "" {
		q.Set("tvdbid", params.TVDBID)
	}
	if params.Season != "" {
		q.Set("season", params.Season)
	}
	if params.Episode != "" {
		q.Set("ep", params.Episode)
	}
	if params.IMDBID != "" {
		q.Set("imdbid", params.IMDBID)
	}
	if params.Author != "" {
		q.Set("author", params.Author)
	}
	if params.Artist != "" {
		q.Set("artist", params.Artist)
	}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	items, err := parseFeed(body)
	if err != nil {
		return nil, err
	}

	releases := make([]Release, 0, len(items))
	for _, item := range items {
		releases = append(releases, item.toRelease(c.server.Name))
	}
	return releases, nil
}

// Caps retrieves the server's category list, flattened with
// subcategories marked.
func (c *Client) Caps(ctx context.Context) ([]Category, error) {
	q := url.Values{}
	q.Set("t", "caps")
	if c.server.APIKey != "" {
		q.Set("apikey", c.server.APIKey)
	}

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	var doc capsDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("server returned non-XML caps response: %w", err)
	}

	var cats []Category
	for _, cat := range doc.Categories.Categories {
		cats = append(cats, Category{ID: cat.ID, Name: cat.Name})
		for _, sub := range cat.Subcats {
			cats = append(cats, Category{ID: sub.ID, Name: sub.Name, Sub: true})
		}
	}
	return cats, nil
}

func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	reqURL := c.server.URL + "/api?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if apiErr := parseAPIError(body); apiErr != nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	// Some servers report API errors with a 200 status
	if apiErr := parseAPIError(body); apiErr != nil {
		return nil, apiErr
	}

	return body, nil
}

func searchType(t string) string {
	if t == "" {
		return TypeSearch
	}
	return t
}

// rssItem matches a Newznab RSS item. The attr elements are the
// newznab:attr extensions; encoding/xml matches them by local name.
type rssItem struct {
	Title     string `xml:"title"`
	GUID      string `xml:"guid"`
	Link      string `xml:"link"`
	Category  string `xml:"category"`
	PubDate   string `xml:"pubDate"`
	Enclosure struct {
		URL    string `xml:"url,attr"`
		Length int64  `xml:"length,attr"`
	} `xml:"enclosure"`
	Attrs []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value,attr"`
	} `xml:"attr"`
}

type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type capsDoc struct {
	XMLName    xml.Name `xml:"caps"`
	Categories struct {
		Categories []struct {
			ID      string `xml:"id,attr"`
			Name    string `xml:"name,attr"`
			Subcats []struct {
				ID   string `xml:"id,attr"`
				Name string `xml:"name,attr"`
			} `xml:"subcat"`
		} `xml:"category"`
	} `xml:"categories"`
}

func parseFeed(body []byte) ([]rssItem, error) {
	var doc rssDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("server returned non-XML response: %w", err)
	}
	return doc.Channel.Items, nil
}

func parseAPIError(body []byte) *APIError {
	var probe struct {
		XMLName     xml.Name
		Code        string `xml:"code,attr"`
		Description string `xml:"description,attr"`
	}
	if err := xml.Unmarshal(body, &probe); err != nil {
		return nil
	}
	if probe.XMLName.Local != "error" {
		return nil
	}
	code, _ := strconv.Atoi(probe.Code)
	return &APIError{Code: code, Description: probe.Description}
}

func (item rssItem) toRelease(server string) Release {
	r := Release{
		GUID:        item.GUID,
		Title:       html.UnescapeString(item.Title),
		Category:    item.Category,
		DownloadURL: html.UnescapeString(item.Link),
		Size:        item.Enclosure.Length,
		Server:      server,
	}
	if r.DownloadURL == "" {
		r.DownloadURL = html.UnescapeString(item.Enclosure.URL)
	}

	for _, attr := range item.Attrs {
		switch attr.Name {
		case "guid":
			if attr.Value != "" {
				r.GUID = attr.Value
			}
		case "size":
			if n, err := strconv.ParseInt(attr.Value, 10, 64); err == nil && n > 0 {
				r.Size = n
			}
		}
	}
	if r.GUID == "" {
		r.GUID = r.DownloadURL
	}

	if item.PubDate != "" {
		if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
			r.PublishDate = t
		} else if t, err := time.Parse(time.RFC1123, item.PubDate); err == nil {
			r.PublishDate = t
		}
	}

	return r
}
