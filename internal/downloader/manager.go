package downloader

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/heissler3/getnzbs/internal/config"
	"github.com/heissler3/getnzbs/internal/nzb"
)

// Manager fetches NZB payloads and writes them to the destination
// directory under a name derived from the release title.
type Manager struct {
	httpClient *http.Client
	userAgent  string
	quiet      bool
}

// NewManager creates a new download manager
func NewManager() *Manager {
	cfg := config.Get()

	timeout := cfg.Network.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.Network.UserAgent
	if userAgent == "" {
		userAgent = "getnzbs/" + config.Version
	}

	return &Manager{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		userAgent: userAgent,
	}
}

// SetQuiet disables the progress bar (used while the TUI owns the screen)
func (m *Manager) SetQuiet(quiet bool) {
	m.quiet = quiet
}

// Filename returns the deterministic destination filename for a title.
func Filename(title string) string {
	return sanitizeTitle(title) + ".nzb"
}

// Fetch downloads the NZB at downloadURL and writes it under destDir.
// The payload is validated as an NZB document before anything touches
// the destination; HTML error pages are rejected. Returns the path of
// the written file.
func (m *Manager) Fetch(ctx context.Context, title, downloadURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	var payload []byte
	retryCfg := DefaultRetryConfig()
	err := RetryOperation(ctx, retryCfg, func() (int, error) {
		var status int
		var err error
		payload, status, err = m.fetchOnce(ctx, downloadURL)
		return status, err
	})
	if err != nil {
		return "", err
	}

	if _, err := nzb.Validate(payload); err != nil {
		return "", err
	}

	filePath := filepath.Join(destDir, Filename(title))
	tempPath := filePath + ".part"

	if err := os.WriteFile(tempPath, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to move %s into place: %w", tempPath, err)
	}

	return filePath, nil
}

func (m *Manager) fetchOnce(ctx context.Context, downloadURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", html.UnescapeString(downloadURL), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("server returned %s", resp.Status)
	}

	var buf bytes.Buffer
	var dst io.Writer = &buf
	if !m.quiet {
		bar := progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetDescription("Fetching"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		dst = io.MultiWriter(&buf, bar)
		defer fmt.Println()
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return nil, resp.StatusCode, err
	}
	return buf.Bytes(), resp.StatusCode, nil
}

// sanitizeTitle removes path separators and other characters that are
// invalid in filenames, trims whitespace and caps the length.
func sanitizeTitle(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	for _, char := range invalid {
		name = strings.ReplaceAll(name, char, "_")
	}

	name = strings.TrimSpace(name)
	if len(name) > 200 {
		name = name[:200]
	}
	if name == "" {
		name = "untitled"
	}

	return name
}
