package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/anatolykoptev/go_video/internal/engine"
)

const articlePromptTmpl = `You are a technical writer.

Given a detailed transcript of a tutorial video:
- Organize it into a clear, structured written tutorial.
- Use headings, bullet points, and fenced code blocks.
- Preserve commands and code exactly.
- Include a short intro and a recap section at the end.
- Respond with the article markdown only, no preamble.

Video title: %s
Video URL: %s

Transcript:
%s`

// WriteArticle assembles the saved part transcripts for slug into a
// tutorial article and persists it as article.md. Transcripts join in
// part order; running before every part is transcribed is allowed but
// produces a partial article and logs a warning.
func WriteArticle(ctx context.Context, store *Store, slug string) (string, string, error) {
	m, err := store.LoadManifest(slug)
	if err != nil {
		return "", "", err
	}
	trs, err := store.LoadTranscripts(slug)
	if err != nil {
		return "", "", err
	}
	if len(trs) == 0 {
		return "", "", fmt.Errorf("%w: no transcripts for %s", ErrNotFound, slug)
	}
	if len(trs) < len(m.Parts) {
		slog.Warn("writing article from partial transcripts",
			slog.String("slug", slug),
			slog.Int("have", len(trs)),
			slog.Int("parts", len(m.Parts)))
	}

	var sb strings.Builder
	for _, tr := range trs {
		fmt.Fprintf(&sb, "\n--- Part %d (%s) ---\n%s\n", tr.Index, tr.Filename, tr.Text)
	}
	prompt := fmt.Sprintf(articlePromptTmpl, m.Title, m.YouTubeURL, sb.String())

	text, err := engine.CallLLM(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("article llm: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", errors.New("article llm returned empty output")
	}

	path := store.ArticlePath(slug)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", "", fmt.Errorf("write article: %w", err)
	}

	if db := GetArchive(); db != nil {
		if err := db.SaveArticle(ctx, slug, m.Title, text); err != nil {
			slog.Warn("archive article failed", slog.String("slug", slug), slog.Any("error", err))
		}
	}

	slog.Info("article written", slog.String("slug", slug), slog.String("path", path))
	return text, path, nil
}

// LoadArticle returns the saved article for slug without regenerating
// it. Reads article.md from disk; when the file is gone but the
// Postgres archive holds a copy, restores it to disk and returns that.
// ErrNotFound when neither has one.
func LoadArticle(ctx context.Context, store *Store, slug string) (string, string, error) {
	path := store.ArticlePath(slug)
	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), path, nil
	}
	if !os.IsNotExist(err) {
		return "", "", fmt.Errorf("read article: %w", err)
	}

	db := GetArchive()
	if db == nil {
		return "", "", fmt.Errorf("%w: no article for %s", ErrNotFound, slug)
	}
	text, err := db.GetArticle(ctx, slug)
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		slog.Warn("restore article to disk failed", slog.String("slug", slug), slog.Any("error", err))
		return text, "", nil
	}
	slog.Info("article restored from archive", slog.String("slug", slug), slog.String("path", path))
	return text, path, nil
}
