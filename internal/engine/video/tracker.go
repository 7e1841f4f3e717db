package video

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_video/internal/engine"
)

// VideoStatus tracks how far along the pipeline a video is.
type VideoStatus string

const (
	StatusPrepared    VideoStatus = "prepared"
	StatusTranscribed VideoStatus = "transcribed"
	StatusWritten     VideoStatus = "written"
	StatusFailed      VideoStatus = "failed"
)

// LibraryVideo is a single entry in the video library.
type LibraryVideo struct {
	ID        int64       `json:"id"`
	Slug      string      `json:"slug"`
	Title     string      `json:"title"`
	URL       string      `json:"url"`
	Status    VideoStatus `json:"status"`
	Parts     int         `json:"parts"`
	Error     string      `json:"error,omitempty"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// LibraryListInput is the input for list_videos.
type LibraryListInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: prepared, transcribed, written, failed (default: all)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max videos to return (default 20)"`
}

// LibraryListResult is the output for list_videos.
type LibraryListResult struct {
	Videos []LibraryVideo `json:"videos"`
	Total  int            `json:"total"`
}

var (
	libraryDB   *sql.DB
	libraryOnce sync.Once
	libraryErr  error
)

// openLibraryDB opens (or creates) the SQLite library database under
// the configured base dir, next to the videos it indexes.
func openLibraryDB() (*sql.DB, error) {
	libraryOnce.Do(func() {
		dbPath := engine.Cfg.LibraryDBPath()
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			libraryErr = fmt.Errorf("library: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if err := initLibrarySchema(db); err != nil {
			libraryErr = fmt.Errorf("library: init schema: %w", err)
			return
		}
		libraryDB = db
	})
	return libraryDB, libraryErr
}

// initLibrarySchema creates the videos table if it doesn't exist.
func initLibrarySchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS videos (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		slug       TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		url        TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'prepared',
		parts      INTEGER NOT NULL DEFAULT 0,
		error      TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// validVideoStatus checks if a status string is valid.
func validVideoStatus(s string) bool {
	switch VideoStatus(s) {
	case StatusPrepared, StatusTranscribed, StatusWritten, StatusFailed:
		return true
	}
	return false
}

// RecordPreparedVideo upserts the library row for a freshly prepared
// video, resetting its status to prepared and clearing any old error.
func RecordPreparedVideo(_ context.Context, slug, title, url string, parts int) error {
	db, err := openLibraryDB()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.Exec(
		`INSERT INTO videos (slug, title, url, status, parts, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, NULL, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
		   title = excluded.title,
		   url = excluded.url,
		   status = excluded.status,
		   parts = excluded.parts,
		   error = NULL,
		   updated_at = excluded.updated_at`,
		slug, title, url, string(StatusPrepared), parts, now, now,
	)
	if err != nil {
		return fmt.Errorf("library: record %s: %w", slug, err)
	}
	return nil
}

// MarkVideoStatus moves a library row to a new status. errMsg is
// stored for failed, cleared otherwise. Unknown slugs are a no-op so
// callers can report status best-effort.
func MarkVideoStatus(_ context.Context, slug string, status VideoStatus, errMsg string) error {
	if !validVideoStatus(string(status)) {
		return fmt.Errorf("library: invalid status %q", status)
	}

	db, err := openLibraryDB()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if status == StatusFailed {
		_, err = db.Exec(`UPDATE videos SET status=?, error=?, updated_at=? WHERE slug=?`,
			string(status), errMsg, now, slug)
	} else {
		_, err = db.Exec(`UPDATE videos SET status=?, error=NULL, updated_at=? WHERE slug=?`,
			string(status), now, slug)
	}
	if err != nil {
		return fmt.Errorf("library: update %s: %w", slug, err)
	}
	return nil
}

// ListLibrary returns library entries, optionally filtered by status,
// newest first.
func ListLibrary(_ context.Context, input LibraryListInput) (*LibraryListResult, error) {
	db, err := openLibraryDB()
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows *sql.Rows
	if input.Status != "" {
		status := strings.ToLower(input.Status)
		if !validVideoStatus(status) {
			return nil, fmt.Errorf("list_videos: invalid status %q (valid: prepared, transcribed, written, failed)", status)
		}
		rows, err = db.Query(
			`SELECT id, slug, title, url, status, parts, error, created_at, updated_at
			 FROM videos WHERE status = ? ORDER BY updated_at DESC LIMIT ?`,
			status, limit,
		)
	} else {
		rows, err = db.Query(
			`SELECT id, slug, title, url, status, parts, error, created_at, updated_at
			 FROM videos ORDER BY updated_at DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list_videos: query: %w", err)
	}
	defer rows.Close()

	var videos []LibraryVideo
	for rows.Next() {
		var v LibraryVideo
		var errMsg sql.NullString
		if err := rows.Scan(&v.ID, &v.Slug, &v.Title, &v.URL, &v.Status,
			&v.Parts, &errMsg, &v.CreatedAt, &v.UpdatedAt); err != nil {
			continue
		}
		v.Error = errMsg.String
		videos = append(videos, v)
	}

	var total int
	if input.Status != "" {
		db.QueryRow(`SELECT COUNT(*) FROM videos WHERE status = ?`, strings.ToLower(input.Status)).Scan(&total) //nolint:errcheck
	} else {
		db.QueryRow(`SELECT COUNT(*) FROM videos`).Scan(&total) //nolint:errcheck
	}

	if videos == nil {
		videos = []LibraryVideo{}
	}
	return &LibraryListResult{Videos: videos, Total: total}, nil
}
