package video

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Package-level singleton, set from main.go when DATABASE_URL is
// configured. Nil means transcripts and articles live on disk only.
var archive *Archive

// SetArchive sets the package-level archive instance.
func SetArchive(a *Archive) { archive = a }

// GetArchive returns the package-level archive instance (may be nil).
func GetArchive() *Archive { return archive }

// Archive holds the pgx connection pool for durable transcript and
// article storage.
type Archive struct {
	pool *pgxpool.Pool
}

// ConnectArchive creates a pgx pool and runs schema migrations.
func ConnectArchive(ctx context.Context, databaseURL string) (*Archive, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 5
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	a := &Archive{pool: pool}
	if err := a.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("archive postgres connected", slog.String("addr", config.ConnConfig.Host))
	return a, nil
}

func (a *Archive) Close() {
	a.pool.Close()
}

func (a *Archive) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := a.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// SaveTranscript upserts one part transcript, keyed by slug and part
// index so re-transcribing replaces the stored text.
func (a *Archive) SaveTranscript(ctx context.Context, slug string, tr *Transcript) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO video_transcripts (slug, part_index, filename, transcript)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (slug, part_index) DO UPDATE SET
		   filename = EXCLUDED.filename,
		   transcript = EXCLUDED.transcript,
		   updated_at = now()`,
		slug, tr.Index, tr.Filename, tr.Text,
	)
	return err
}

// SaveArticle upserts the assembled article for a video.
func (a *Archive) SaveArticle(ctx context.Context, slug, title, article string) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO video_articles (slug, title, article)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (slug) DO UPDATE SET
		   title = EXCLUDED.title,
		   article = EXCLUDED.article,
		   updated_at = now()`,
		slug, title, article,
	)
	return err
}

// GetArticle returns the stored article for slug, or ErrNotFound.
func (a *Archive) GetArticle(ctx context.Context, slug string) (string, error) {
	var article string
	err := a.pool.QueryRow(ctx,
		`SELECT article FROM video_articles WHERE slug = $1`, slug,
	).Scan(&article)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: no archived article for %s", ErrNotFound, slug)
	}
	if err != nil {
		return "", fmt.Errorf("get article: %w", err)
	}
	return article, nil
}
