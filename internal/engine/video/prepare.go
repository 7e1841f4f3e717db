package video

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/anatolykoptev/go_video/internal/engine"
)

// DefaultPartMB is the target part size when the caller does not pick
// one, sized to keep each part well inside multimodal prompt limits.
const DefaultPartMB = 15

// fallbackTitle is used when the metadata dump carries no title.
const fallbackTitle = "youtube-video"

// Preparer runs the full preparation pipeline: metadata, download,
// split, manifest.
type Preparer struct {
	Store *Store
	Tools Toolchain
}

// PrepareResult summarizes a prepared video for tool callers.
type PrepareResult struct {
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	YouTubeURL       string     `json:"youtube_url"`
	BaseDir          string     `json:"base_dir"`
	Parts            []PartInfo `json:"parts"`
	ManifestResource string     `json:"manifest_resource"`
	PartsResources   []string   `json:"parts_resources"`
}

// validateURL accepts absolute http(s) URLs only.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: malformed video url %q", ErrInvalidArgument, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported url scheme %q", ErrInvalidArgument, u.Scheme)
	}
	return nil
}

// Prepare downloads the video at rawURL, splits it into parts of at
// most partMB megabytes and persists the manifest. The manifest is
// written last; a failure in any earlier step leaves no manifest
// behind (earlier media files may remain and are overwritten by the
// next run). Preparing the same video again replaces the whole layout,
// so the operation is idempotent per slug.
func (p *Preparer) Prepare(ctx context.Context, rawURL string, partMB int) (*PrepareResult, error) {
	if partMB <= 0 {
		return nil, fmt.Errorf("%w: part size must be positive, got %d MB", ErrInvalidArgument, partMB)
	}
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	engine.IncrPrepareOps()

	title, err := p.Tools.FetchTitle(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = fallbackTitle
	}
	slug := Slugify(title)
	videoDir := p.Store.VideoDir(slug)

	slog.Info("preparing video",
		slog.String("slug", slug),
		slog.String("title", title),
		slog.Int("part_mb", partMB))

	videoPath, err := p.Tools.Download(ctx, rawURL, slug, videoDir)
	if err != nil {
		return nil, err
	}

	parts, err := p.Tools.Split(ctx, videoPath, slug, partMB)
	if err != nil {
		return nil, err
	}

	m := &VideoManifest{
		Slug:          slug,
		Title:         title,
		YouTubeURL:    rawURL,
		BaseDir:       videoDir,
		OriginalVideo: filepath.Base(videoPath),
		PartSizeMB:    partMB,
		Parts:         parts,
	}
	if err := p.Store.WriteManifest(m); err != nil {
		return nil, err
	}

	slog.Info("video prepared",
		slog.String("slug", slug),
		slog.Int("parts", len(parts)))

	res := &PrepareResult{
		Slug:             slug,
		Title:            title,
		YouTubeURL:       rawURL,
		BaseDir:          videoDir,
		Parts:            parts,
		ManifestResource: ManifestResourceURI(slug),
		PartsResources:   make([]string, 0, len(parts)),
	}
	for _, part := range parts {
		res.PartsResources = append(res.PartsResources, PartResourceURI(slug, part.Index))
	}
	return res, nil
}
