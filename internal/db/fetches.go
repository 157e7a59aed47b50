package db

import (
	"database/sql"
	"time"
)

// FetchStatus is the outcome of one NZB fetch.
type FetchStatus string

const (
	FetchOK     FetchStatus = "ok"
	FetchFailed FetchStatus = "failed"
)

// Fetch is one saved (or attempted) NZB retrieval.
type Fetch struct {
	ID           int64
	GUID         string
	Title        string
	Server       string
	Category     string
	Size         int64
	DownloadURL  string
	FilePath     string
	Status       FetchStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// RecordFetch inserts or replaces the fetch record for a release.
// A release fetched twice keeps its latest outcome.
func RecordFetch(f *Fetch) error {
	result, err := database.Exec(`
		INSERT INTO fetches (guid, title, server, category, size, download_url, file_path, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guid) DO UPDATE SET
			file_path = excluded.file_path,
			status = excluded.status,
			error_message = excluded.error_message`,
		f.GUID, f.Title, f.Server, f.Category, f.Size, f.DownloadURL, f.FilePath, f.Status, f.ErrorMessage,
	)
	if err != nil {
		return err
	}
	if id, err := result.LastInsertId(); err == nil {
		f.ID = id
	}
	return nil
}

// GetFetchByGUID retrieves a fetch record by release GUID.
// A missing record returns (nil, nil).
func GetFetchByGUID(guid string) (*Fetch, error) {
	f := &Fetch{}
	var errMsg sql.NullString
	err := database.QueryRow(`
		SELECT id, guid, title, server, category, size, download_url, file_path, status, error_message, created_at
		FROM fetches WHERE guid = ?`, guid).Scan(
		&f.ID, &f.GUID, &f.Title, &f.Server, &f.Category, &f.Size,
		&f.DownloadURL, &f.FilePath, &f.Status, &errMsg, &f.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if errMsg.Valid {
		f.ErrorMessage = errMsg.String
	}
	return f, nil
}

// ListFetches retrieves fetch records, newest first.
func ListFetches(limit int) ([]*Fetch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := database.Query(`
		SELECT id, guid, title, server, category, size, download_url, file_path, status, error_message, created_at
		FROM fetches
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fetches []*Fetch
	for rows.Next() {
		f := &Fetch{}
		var errMsg sql.NullString
		err := rows.Scan(
			&f.ID, &f.GUID, &f.Title, &f.Server, &f.Category, &f.Size,
			&f.DownloadURL, &f.FilePath, &f.Status, &errMsg, &f.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if errMsg.Valid {
			f.ErrorMessage = errMsg.String
		}
		fetches = append(fetches, f)
	}
	return fetches, rows.Err()
}
