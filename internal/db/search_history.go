package db

import (
	"encoding/json"
	"time"
)

// SearchHistory represents a saved search query
type SearchHistory struct {
	ID          int64
	Query       string
	Server      string
	ResultCount int
	Params      SearchHistoryParams
	CreatedAt   time.Time
}

// SearchHistoryParams stores the non-query parameters used in a search
type SearchHistoryParams struct {
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
	Season   string `json:"season,omitempty"`
	Episode  string `json:"episode,omitempty"`
	IMDBID   string `json:"imdbid,omitempty"`
	TVDBID   string `json:"tvdbid,omitempty"`
	Author   string `json:"author,omitempty"`
	Artist   string `json:"artist,omitempty"`
}

// AddSearchHistory adds a search to history
func AddSearchHistory(query, server string, resultCount int, params SearchHistoryParams) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		paramsJSON = []byte("{}")
	}

	_, err = database.Exec(`
		INSERT INTO search_history (query, server, result_count, params)
		VALUES (?, ?, ?, ?)`,
		query, server, resultCount, string(paramsJSON),
	)
	return err
}

// GetUniqueSearchHistory retrieves unique recent searches (no duplicates)
func GetUniqueSearchHistory(limit int) ([]*SearchHistory, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := database.Query(`
		SELECT id, query, server, result_count, params, created_at
		FROM search_history
		WHERE id IN (
			SELECT MAX(id) FROM search_history GROUP BY query, server
		)
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*SearchHistory
	for rows.Next() {
		h := &SearchHistory{}
		var paramsJSON string
		err := rows.Scan(&h.ID, &h.Query, &h.Server, &h.ResultCount, &paramsJSON, &h.CreatedAt)
		if err != nil {
			return nil, err
		}

		if paramsJSON != "" {
			json.Unmarshal([]byte(paramsJSON), &h.Params)
		}

		history = append(history, h)
	}
	return history, rows.Err()
}

// ClearSearchHistory removes all search history
func ClearSearchHistory() error {
	_, err := database.Exec(`DELETE FROM search_history`)
	return err
}

// DeleteSearchHistoryOlderThan removes history older than the given duration.
// The cutoff is formatted to match sqlite's CURRENT_TIMESTAMP text.
func DeleteSearchHistoryOlderThan(d time.Duration) error {
	cutoff := time.Now().UTC().Add(-d).Format("2006-01-02 15:04:05")
	_, err := database.Exec(`DELETE FROM search_history WHERE created_at < ?`, cutoff)
	return err
}
