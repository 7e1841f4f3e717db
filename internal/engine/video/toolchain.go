package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Toolchain locates the external binaries the pipeline shells out to.
// Values are names resolved via PATH or absolute paths; tests point
// them at fakes.
type Toolchain struct {
	YtDlp   string
	FFmpeg  string
	FFprobe string
}

// DefaultToolchain resolves all binaries via PATH.
func DefaultToolchain() Toolchain {
	return Toolchain{YtDlp: "yt-dlp", FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
}

// run executes bin with args and returns its trimmed stdout. A non-zero
// exit is a hard failure; the error carries whatever the tool printed.
// stdout and stderr are captured separately so machine-readable output
// (yt-dlp -J) is never polluted by warnings.
func run(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("%s failed: %w (output: %s)", bin, err, detail)
	}
	return strings.TrimSpace(stdout.String()), nil
}
