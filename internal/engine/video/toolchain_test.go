package video

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFakeTool installs an executable shell script standing in for an
// external binary and returns its path.
func writeFakeTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
	return path
}

// writeBytes creates a file of n zero bytes.
func writeBytes(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultToolchain(t *testing.T) {
	tc := DefaultToolchain()
	if tc.YtDlp != "yt-dlp" || tc.FFmpeg != "ffmpeg" || tc.FFprobe != "ffprobe" {
		t.Errorf("unexpected defaults: %+v", tc)
	}
}

func TestRun_CapturesStderrOnFailure(t *testing.T) {
	dir := t.TempDir()
	bin := writeFakeTool(t, dir, "boom", "echo oops >&2\nexit 3\n")

	_, err := run(context.Background(), bin)
	if err == nil {
		t.Fatal("expected error from failing tool")
	}
	if !strings.Contains(err.Error(), "oops") {
		t.Errorf("error %q does not carry tool stderr", err)
	}
}

func TestRun_TrimsStdout(t *testing.T) {
	dir := t.TempDir()
	bin := writeFakeTool(t, dir, "say", "echo '  hello  '\n")

	out, err := run(context.Background(), bin)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "hello" {
		t.Errorf("run output = %q, want %q", out, "hello")
	}
}
