package db

import (
	"path/filepath"
	"testing"
	"time"
)

func initTestDB(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := InitAt(path); err != nil {
		t.Fatalf("InitAt() error = %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestRecordAndGetFetch(t *testing.T) {
	initTestDB(t)

	f := &Fetch{
		GUID:        "guid-1",
		Title:       "Some Release",
		Server:      "alpha",
		Category:    "TV > HD",
		Size:        123456,
		DownloadURL: "https://indexer.example/getnzb/1",
		FilePath:    "/tmp/nzbs/Some Release.nzb",
		Status:      FetchOK,
	}
	if err := RecordFetch(f); err != nil {
		t.Fatalf("RecordFetch() error = %v", err)
	}

	got, err := GetFetchByGUID("guid-1")
	if err != nil {
		t.Fatalf("GetFetchByGUID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetFetchByGUID() = nil, want record")
	}
	if got.Title != f.Title || got.Server != f.Server || got.Size != f.Size {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Status != FetchOK {
		t.Fatalf("Status = %q, want ok", got.Status)
	}
}

func TestGetFetchMissing(t *testing.T) {
	initTestDB(t)

	got, err := GetFetchByGUID("nope")
	if err != nil {
		t.Fatalf("GetFetchByGUID() error = %v", err)
	}
	if got != nil {
		t.Fatalf("GetFetchByGUID() = %+v, want nil for missing record", got)
	}
}

func TestRecordFetchUpsert(t *testing.T) {
	initTestDB(t)

	f := &Fetch{GUID: "g", Title: "T", DownloadURL: "u", Status: FetchFailed, ErrorMessage: "boom"}
	if err := RecordFetch(f); err != nil {
		t.Fatalf("RecordFetch() error = %v", err)
	}

	// Retry succeeds, record keeps the latest outcome
	f.Status = FetchOK
	f.ErrorMessage = ""
	f.FilePath = "/tmp/T.nzb"
	if err := RecordFetch(f); err != nil {
		t.Fatalf("RecordFetch() (2nd) error = %v", err)
	}

	got, err := GetFetchByGUID("g")
	if err != nil {
		t.Fatalf("GetFetchByGUID() error = %v", err)
	}
	if got.Status != FetchOK || got.ErrorMessage != "" || got.FilePath != "/tmp/T.nzb" {
		t.Fatalf("upsert result = %+v", got)
	}

	fetches, err := ListFetches(10)
	if err != nil {
		t.Fatalf("ListFetches() error = %v", err)
	}
	if len(fetches) != 1 {
		t.Fatalf("len(fetches) = %d, want 1 after upsert", len(fetches))
	}
}

func TestSearchHistory(t *testing.T) {
	initTestDB(t)

	if err := AddSearchHistory("linux iso", "alpha", 42, SearchHistoryParams{Category: "4000"}); err != nil {
		t.Fatalf("AddSearchHistory() error = %v", err)
	}
	if err := AddSearchHistory("linux iso", "alpha", 40, SearchHistoryParams{Category: "4000"}); err != nil {
		t.Fatalf("AddSearchHistory() (2nd) error = %v", err)
	}
	if err := AddSearchHistory("other", "beta", 1, SearchHistoryParams{}); err != nil {
		t.Fatalf("AddSearchHistory() (3rd) error = %v", err)
	}

	entries, err := GetUniqueSearchHistory(10)
	if err != nil {
		t.Fatalf("GetUniqueSearchHistory() error = %v", err)
	}
	// Duplicate query collapses to its latest entry
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	var linux *SearchHistory
	for _, e := range entries {
		if e.Query == "linux iso" {
			linux = e
		}
	}
	if linux == nil {
		t.Fatal("missing 'linux iso' entry")
	}
	if linux.ResultCount != 40 {
		t.Fatalf("ResultCount = %d, want latest (40)", linux.ResultCount)
	}
	if linux.Params.Category != "4000" {
		t.Fatalf("Params.Category = %q, want 4000", linux.Params.Category)
	}

	if err := ClearSearchHistory(); err != nil {
		t.Fatalf("ClearSearchHistory() error = %v", err)
	}
	entries, err = GetUniqueSearchHistory(10)
	if err != nil {
		t.Fatalf("GetUniqueSearchHistory() after clear error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("len(entries) after clear = %d, want 0", len(entries))
	}
}

func TestDeleteSearchHistoryOlderThan(t *testing.T) {
	initTestDB(t)

	if err := AddSearchHistory("fresh", "alpha", 1, SearchHistoryParams{}); err != nil {
		t.Fatalf("AddSearchHistory() error = %v", err)
	}

	// A day-old cutoff keeps the fresh entry
	if err := DeleteSearchHistoryOlderThan(24 * time.Hour); err != nil {
		t.Fatalf("DeleteSearchHistoryOlderThan() error = %v", err)
	}
	entries, err := GetUniqueSearchHistory(10)
	if err != nil {
		t.Fatalf("GetUniqueSearchHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 after old cutoff", len(entries))
	}

	// A future cutoff removes it
	if err := DeleteSearchHistoryOlderThan(-time.Minute); err != nil {
		t.Fatalf("DeleteSearchHistoryOlderThan() (2nd) error = %v", err)
	}
	entries, err = GetUniqueSearchHistory(10)
	if err != nil {
		t.Fatalf("GetUniqueSearchHistory() (2nd) error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("len(entries) = %d, want 0 after future cutoff", len(entries))
	}
}

func TestSearchCache(t *testing.T) {
	initTestDB(t)

	key := GenerateCacheKey("alpha", "linux", map[string]string{"cat": "4000"})

	// Miss before save
	entry, err := GetCachedSearch(key)
	if err != nil {
		t.Fatalf("GetCachedSearch() error = %v", err)
	}
	if entry != nil {
		t.Fatal("expected cache miss before save")
	}

	if err := SaveCachedSearch(key, "linux", "alpha", `[{"title":"x"}]`, 1, time.Hour); err != nil {
		t.Fatalf("SaveCachedSearch() error = %v", err)
	}

	entry, err = GetCachedSearch(key)
	if err != nil {
		t.Fatalf("GetCachedSearch() (2nd) error = %v", err)
	}
	if entry == nil {
		t.Fatal("expected cache hit")
	}
	if entry.ResultsJSON != `[{"title":"x"}]` || entry.ResultCount != 1 {
		t.Fatalf("cache entry = %+v", entry)
	}
}

func TestSearchCacheExpiry(t *testing.T) {
	initTestDB(t)

	key := GenerateCacheKey("alpha", "stale", nil)
	if err := SaveCachedSearch(key, "stale", "alpha", `[]`, 0, -time.Minute); err != nil {
		t.Fatalf("SaveCachedSearch() error = %v", err)
	}

	entry, err := GetCachedSearch(key)
	if err != nil {
		t.Fatalf("GetCachedSearch() error = %v", err)
	}
	if entry != nil {
		t.Fatal("expected miss for expired entry")
	}

	stats, err := GetCacheStats()
	if err != nil {
		t.Fatalf("GetCacheStats() error = %v", err)
	}
	if stats.Total != 1 || stats.Expired != 1 {
		t.Fatalf("stats = (%d, %d), want (1, 1)", stats.Total, stats.Expired)
	}

	removed, err := CleanExpiredCache()
	if err != nil {
		t.Fatalf("CleanExpiredCache() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("CleanExpiredCache() = %d, want 1", removed)
	}
	stats, err = GetCacheStats()
	if err != nil {
		t.Fatalf("GetCacheStats() (2nd) error = %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("total after clean = %d, want 0", stats.Total)
	}
}

func TestCacheStatsBreakdown(t *testing.T) {
	initTestDB(t)

	for _, e := range []struct{ server, query string }{
		{"alpha", "a"}, {"alpha", "b"}, {"beta", "a"},
	} {
		key := GenerateCacheKey(e.server, e.query, nil)
		if err := SaveCachedSearch(key, e.query, e.server, `[]`, 0, time.Hour); err != nil {
			t.Fatalf("SaveCachedSearch(%s, %s) error = %v", e.server, e.query, err)
		}
	}

	stats, err := GetCacheStats()
	if err != nil {
		t.Fatalf("GetCacheStats() error = %v", err)
	}
	if stats.Total != 3 || stats.Expired != 0 {
		t.Fatalf("stats = (%d, %d), want (3, 0)", stats.Total, stats.Expired)
	}
	if stats.ByServer["alpha"] != 2 || stats.ByServer["beta"] != 1 {
		t.Fatalf("ByServer = %v, want alpha:2 beta:1", stats.ByServer)
	}
	if stats.Oldest.IsZero() || stats.Newest.IsZero() {
		t.Fatalf("entry ages missing: oldest %v, newest %v", stats.Oldest, stats.Newest)
	}
	if stats.Newest.Before(stats.Oldest) {
		t.Fatalf("newest %v before oldest %v", stats.Newest, stats.Oldest)
	}
}

func TestGenerateCacheKeyDistinguishesInputs(t *testing.T) {
	a := GenerateCacheKey("alpha", "q", nil)
	b := GenerateCacheKey("beta", "q", nil)
	c := GenerateCacheKey("alpha", "q", map[string]string{"cat": "5070"})

	if a == b {
		t.Error("same key for different servers")
	}
	if a == c {
		t.Error("same key for different params")
	}
	if a != GenerateCacheKey("alpha", "q", nil) {
		t.Error("key not deterministic")
	}
}
