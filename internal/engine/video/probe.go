package video

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_video/internal/engine"
)

// bytesPerMB converts byte counts to the binary megabytes manifests
// report sizes in.
const bytesPerMB = 1024 * 1024

// FileSizeMB returns the size of the file at path in megabytes.
func FileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrProbe, path, err)
	}
	return float64(info.Size()) / bytesPerMB, nil
}

// ProbeDuration returns the container duration of the media file in
// seconds, as reported by ffprobe. Durations must be strictly positive;
// anything else means the file is unusable for splitting.
func (tc Toolchain) ProbeDuration(ctx context.Context, path string) (float64, error) {
	engine.IncrProbes()
	out, err := run(ctx, tc.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbe, err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable ffprobe duration %q for %s", ErrProbe, out, path)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %v for %s", ErrProbe, d, path)
	}
	return d, nil
}
