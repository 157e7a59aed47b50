package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SearchCacheEntry represents a cached search result
type SearchCacheEntry struct {
	ID          int64
	CacheKey    string
	Query       string
	Server      string
	ResultsJSON string
	ResultCount int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// GenerateCacheKey generates a unique cache key from server, query and params
func GenerateCacheKey(server, query string, params interface{}) string {
	data := server + "\x00" + query
	if params != nil {
		paramsJSON, _ := json.Marshal(params)
		data += "\x00" + string(paramsJSON)
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:16])
}

// GetCachedSearch retrieves a cached search result if it hasn't expired.
// Expiry is stored as unix seconds so sqlite can compare it natively.
func GetCachedSearch(cacheKey string) (*SearchCacheEntry, error) {
	entry := &SearchCacheEntry{}
	var expiresUnix int64
	err := database.QueryRow(`
		SELECT id, cache_key, query, server, results_json, result_count, created_at, expires_at
		FROM search_cache
		WHERE cache_key = ? AND expires_at > ?`, cacheKey, time.Now().Unix()).Scan(
		&entry.ID, &entry.CacheKey, &entry.Query, &entry.Server,
		&entry.ResultsJSON, &entry.ResultCount, &entry.CreatedAt, &expiresUnix,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}
	entry.ExpiresAt = time.Unix(expiresUnix, 0)
	return entry, nil
}

// SaveCachedSearch saves a search result to cache
func SaveCachedSearch(cacheKey, query, server, resultsJSON string, resultCount int, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()
	_, err := database.Exec(`
		INSERT OR REPLACE INTO search_cache (cache_key, query, server, results_json, result_count, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cacheKey, query, server, resultsJSON, resultCount, expiresAt)
	return err
}

// CleanExpiredCache removes expired cache entries and reports how many
// rows were dropped.
func CleanExpiredCache() (int64, error) {
	res, err := database.Exec(`DELETE FROM search_cache WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearSearchCache drops all cached search results and reports how many
// rows were dropped.
func ClearSearchCache() (int64, error) {
	res, err := database.Exec(`DELETE FROM search_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CacheStats summarizes the state of the search cache.
type CacheStats struct {
	Total    int
	Expired  int
	Oldest   time.Time
	Newest   time.Time
	ByServer map[string]int
}

// GetCacheStats reports entry counts, the age range of stored entries
// and a per-server breakdown.
func GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{ByServer: make(map[string]int)}

	// MIN/MAX come back as CURRENT_TIMESTAMP text, not DATETIME columns
	var oldest, newest sql.NullString
	err := database.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(expires_at < ?), 0),
		       MIN(created_at),
		       MAX(created_at)
		FROM search_cache`, time.Now().Unix()).Scan(
		&stats.Total, &stats.Expired, &oldest, &newest,
	)
	if err != nil {
		return nil, err
	}
	if oldest.Valid {
		stats.Oldest, _ = time.Parse("2006-01-02 15:04:05", oldest.String)
	}
	if newest.Valid {
		stats.Newest, _ = time.Parse("2006-01-02 15:04:05", newest.String)
	}

	rows, err := database.Query(`SELECT server, COUNT(*) FROM search_cache GROUP BY server`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var server string
		var n int
		if err := rows.Scan(&server, &n); err != nil {
			return nil, err
		}
		stats.ByServer[server] = n
	}
	return stats, rows.Err()
}
