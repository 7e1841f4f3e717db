package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchTitle(t *testing.T) {
	dir := t.TempDir()
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp",
		`echo '{"title":"Build a CLI in Go","id":"abc"}'`+"\n")}

	title, err := tc.FetchTitle(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("FetchTitle: %v", err)
	}
	if title != "Build a CLI in Go" {
		t.Errorf("title = %q", title)
	}
}

func TestFetchTitle_MissingTitle(t *testing.T) {
	dir := t.TempDir()
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp", `echo '{}'`+"\n")}

	title, err := tc.FetchTitle(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("FetchTitle: %v", err)
	}
	if title != "" {
		t.Errorf("title = %q, want empty for missing field", title)
	}
}

func TestFetchTitle_BadJSON(t *testing.T) {
	dir := t.TempDir()
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp", "echo not json\n")}

	_, err := tc.FetchTitle(context.Background(), "https://example.com/v")
	if !errors.Is(err, ErrDownload) {
		t.Errorf("expected ErrDownload, got %v", err)
	}
}

func TestFetchTitle_ToolFailure(t *testing.T) {
	dir := t.TempDir()
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp", "echo no video >&2\nexit 1\n")}

	_, err := tc.FetchTitle(context.Background(), "https://example.com/v")
	if !errors.Is(err, ErrDownload) {
		t.Errorf("expected ErrDownload, got %v", err)
	}
}

// The fake resolves the %(ext)s output template the way yt-dlp would
// when the source container is webm; Download must rename to .mp4.
const downloadWebmFake = `out=$(printf '%s' "$4" | sed 's/%(ext)s/webm/')
: > "$out"
`

func TestDownload_RenamesToMP4(t *testing.T) {
	dir := t.TempDir()
	videoDir := filepath.Join(dir, "demo-video-abcd")
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp", downloadWebmFake)}

	path, err := tc.Download(context.Background(), "https://example.com/v", "demo-video-abcd", videoDir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	want := filepath.Join(videoDir, "demo-video-abcd.mp4")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(videoDir, "demo-video-abcd.webm")); !os.IsNotExist(err) {
		t.Errorf("webm original should have been renamed away, stat err = %v", err)
	}
}

func TestDownload_EmptySlugUsesOriginal(t *testing.T) {
	dir := t.TempDir()
	videoDir := filepath.Join(dir, "v")
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp", downloadWebmFake)}

	path, err := tc.Download(context.Background(), "https://example.com/v", "", videoDir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "original.mp4" {
		t.Errorf("path = %q, want original.mp4 base", path)
	}
}

func TestDownload_NoFileProduced(t *testing.T) {
	dir := t.TempDir()
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp", "exit 0\n")}

	_, err := tc.Download(context.Background(), "https://example.com/v", "demo-video-abcd", filepath.Join(dir, "v"))
	if !errors.Is(err, ErrDownload) {
		t.Errorf("expected ErrDownload, got %v", err)
	}
}

func TestDownload_ToolFailure(t *testing.T) {
	dir := t.TempDir()
	tc := Toolchain{YtDlp: writeFakeTool(t, dir, "yt-dlp", "echo 403 forbidden >&2\nexit 1\n")}

	_, err := tc.Download(context.Background(), "https://example.com/v", "demo-video-abcd", filepath.Join(dir, "v"))
	if !errors.Is(err, ErrDownload) {
		t.Errorf("expected ErrDownload, got %v", err)
	}
}
