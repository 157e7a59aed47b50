package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heissler3/getnzbs/internal/nzb"
)

const sampleNZB = `<?xml version="1.0" encoding="UTF-8"?>
<nzb xmlns="http://www.newzbin.com/DTD/2003/nzb">
  <file poster="p@example.com" date="1706000000" subject="test (1/1)">
    <groups><group>alt.binaries.test</group></groups>
    <segments><segment bytes="1000" number="1">seg@example.com</segment></segments>
  </file>
</nzb>`

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Some.Release.1080p", "Some.Release.1080p.nzb"},
		{"bad/slash\\title", "bad_slash_title.nzb"},
		{"  spaced  ", "spaced.nzb"},
		{`a:b*c?d"e<f>g|h`, "a_b_c_d_e_f_g_h.nzb"},
		{"", "untitled.nzb"},
	}

	for _, tt := range tests {
		if got := Filename(tt.title); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}

	// Deterministic: same title, same name
	if Filename("x y z") != Filename("x y z") {
		t.Error("Filename not deterministic")
	}
}

func TestFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := Filename(long)
	if len(got) > 200+len(".nzb") {
		t.Fatalf("len(Filename) = %d, want <= %d", len(got), 200+len(".nzb"))
	}
}

func TestFetchWritesNZB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-nzb")
		fmt.Fprint(w, sampleNZB)
	}))
	defer srv.Close()

	destDir := t.TempDir()
	mgr := NewManager()
	mgr.SetQuiet(true)

	path, err := mgr.Fetch(context.Background(), "My Release", srv.URL+"/getnzb/abc", destDir)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := filepath.Join(destDir, "My Release.nzb")
	if path != want {
		t.Fatalf("Fetch() path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != sampleNZB {
		t.Fatal("written payload differs from response body")
	}

	// No leftover temp file
	if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
		t.Fatalf("temp file still present: %v", err)
	}
}

func TestFetchRejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<!doctype html><html><body>login required</body></html>")
	}))
	defer srv.Close()

	destDir := t.TempDir()
	mgr := NewManager()
	mgr.SetQuiet(true)

	_, err := mgr.Fetch(context.Background(), "Broken", srv.URL+"/getnzb/abc", destDir)
	if err != nzb.ErrNotNZB {
		t.Fatalf("Fetch() error = %v, want ErrNotNZB", err)
	}

	// Nothing may be written to the destination
	entries, readErr := os.ReadDir(destDir)
	if readErr != nil {
		t.Fatalf("reading dest dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("dest dir has %d entries, want 0", len(entries))
	}
}

func TestFetchCreatesDestDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleNZB)
	}))
	defer srv.Close()

	destDir := filepath.Join(t.TempDir(), "nested", "nzbs")
	mgr := NewManager()
	mgr.SetQuiet(true)

	if _, err := mgr.Fetch(context.Background(), "R", srv.URL, destDir); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "R.nzb")); err != nil {
		t.Fatalf("expected file in created dir: %v", err)
	}
}

func TestFetchEscapedLink(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, sampleNZB)
	}))
	defer srv.Close()

	mgr := NewManager()
	mgr.SetQuiet(true)

	// Links arrive HTML-escaped from the feed
	url := srv.URL + "/getnzb?id=1&amp;apikey=k"
	if _, err := mgr.Fetch(context.Background(), "E", url, t.TempDir()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(gotQuery, "apikey=k") {
		t.Fatalf("query = %q, want unescaped apikey param", gotQuery)
	}
}
