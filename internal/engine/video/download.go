package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go_video/internal/engine"
)

// FetchTitle dumps the video metadata with yt-dlp and returns the
// title. A dump that parses but has no title returns "" so the caller
// can apply its fallback; a failed or unparseable dump is an error.
func (tc Toolchain) FetchTitle(ctx context.Context, url string) (string, error) {
	out, err := run(ctx, tc.YtDlp, "-J", url)
	if err != nil {
		return "", fmt.Errorf("%w: metadata dump: %v", ErrDownload, err)
	}
	var meta struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return "", fmt.Errorf("%w: metadata dump not valid JSON: %v", ErrDownload, err)
	}
	return meta.Title, nil
}

// Download fetches the video as MP4 into videoDir and returns the path
// of {base}.mp4, where base is the slug (or "original" when slug is
// empty). yt-dlp picks the container; whatever extension it actually
// produced is located by glob and renamed, not transcoded.
func (tc Toolchain) Download(ctx context.Context, url, slug, videoDir string) (string, error) {
	engine.IncrDownloads()
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrDownload, videoDir, err)
	}

	base := slug
	if base == "" {
		base = "original"
	}
	tmpl := filepath.Join(videoDir, base+".%(ext)s")
	if _, err := run(ctx, tc.YtDlp, "-f", "mp4", "-o", tmpl, url); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	matches, err := filepath.Glob(filepath.Join(videoDir, base+".*"))
	if err != nil {
		return "", fmt.Errorf("%w: glob %s.*: %v", ErrDownload, base, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no %s.* file in %s after yt-dlp run", ErrDownload, base, videoDir)
	}

	got := matches[0]
	want := filepath.Join(videoDir, base+".mp4")
	if got != want {
		if err := os.Rename(got, want); err != nil {
			return "", fmt.Errorf("%w: rename %s: %v", ErrDownload, filepath.Base(got), err)
		}
	}
	return want, nil
}
