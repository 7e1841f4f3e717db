package video

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/anatolykoptev/go_video/internal/engine"
)

// partsDirName is the per-video subdirectory holding split output.
const partsDirName = "parts"

// round2 rounds to the 2-decimal precision part sizes and timestamps
// are persisted with.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// splitPlan sizes the segmentation: how many parts a video of totalMB
// needs to stay under partMB each, and the uniform duration per part.
// The time axis stands in for the byte axis, so boundaries are exact
// only for constant-bitrate streams; variable bitrate makes parts
// merely approximate the target size.
func splitPlan(totalMB float64, partMB int, duration float64) (numParts int, segmentSeconds float64) {
	numParts = int(math.Ceil(totalMB / float64(partMB)))
	segmentSeconds = duration / float64(numParts)
	return numParts, segmentSeconds
}

// Split cuts the video into stream-copied parts of at most partMB
// megabytes (approximately: cut points land on keyframes and the plan
// assumes constant bitrate). Returned parts carry planned timings, not
// re-probed ones, and cover [0, duration) contiguously.
func (tc Toolchain) Split(ctx context.Context, videoPath, slug string, partMB int) ([]PartInfo, error) {
	if partMB <= 0 {
		return nil, fmt.Errorf("%w: part size must be positive, got %d MB", ErrInvalidArgument, partMB)
	}

	partsDir := filepath.Join(filepath.Dir(videoPath), partsDirName)
	if err := os.MkdirAll(partsDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrSegmentation, partsDir, err)
	}

	totalMB, err := FileSizeMB(videoPath)
	if err != nil {
		return nil, err
	}
	duration, err := tc.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	engine.IncrSegmentRuns()

	// Small enough already: one part spanning the whole video.
	if totalMB <= float64(partMB) {
		out := filepath.Join(partsDir, fmt.Sprintf("%s_part_000.mp4", slug))
		if _, err := run(ctx, tc.FFmpeg, "-y", "-i", videoPath, "-c", "copy", out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSegmentation, err)
		}
		sizeMB, err := FileSizeMB(out)
		if err != nil {
			return nil, err
		}
		return []PartInfo{{
			Index:        0,
			Filename:     filepath.Base(out),
			SizeMB:       round2(sizeMB),
			StartSeconds: 0,
			EndSeconds:   round2(duration),
		}}, nil
	}

	numParts, segmentSeconds := splitPlan(totalMB, partMB, duration)
	pattern := filepath.Join(partsDir, fmt.Sprintf("%s_part_%%03d.mp4", slug))
	if _, err := run(ctx, tc.FFmpeg,
		"-y",
		"-i", videoPath,
		"-c", "copy",
		"-map", "0",
		"-f", "segment",
		"-segment_time", strconv.FormatFloat(segmentSeconds, 'f', -1, 64),
		pattern,
	); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmentation, err)
	}

	// The muxer owns the real part count (keyframe spacing can shift
	// it off the plan), so enumerate what it produced. Glob results
	// are sorted and %03d keeps that order chronological.
	produced, err := filepath.Glob(filepath.Join(partsDir, slug+"_part_*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("%w: glob parts: %v", ErrSegmentation, err)
	}
	if len(produced) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no segments for %s (planned %d)", ErrSegmentation, videoPath, numParts)
	}

	parts := make([]PartInfo, 0, len(produced))
	for i, p := range produced {
		sizeMB, err := FileSizeMB(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, PartInfo{
			Index:        i,
			Filename:     filepath.Base(p),
			SizeMB:       round2(sizeMB),
			StartSeconds: round2(float64(i) * segmentSeconds),
			EndSeconds:   round2(math.Min(duration, float64(i+1)*segmentSeconds)),
		})
	}
	return parts, nil
}
