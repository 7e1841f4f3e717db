// Package video implements the YouTube preparation pipeline: metadata,
// download, size-bounded splitting, manifests, transcription and
// article assembly. Components take their dependencies explicitly so
// they stay testable against temporary directories and fake tools.
package video

import "errors"

// Sentinel errors classifying pipeline failures. Wrapped messages add
// operation context and, for external tools, the captured output.
// Callers match with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrProbe           = errors.New("probe failed")
	ErrDownload        = errors.New("download failed")
	ErrSegmentation    = errors.New("segmentation failed")
	ErrNotFound        = errors.New("not found")
	ErrCorruptData     = errors.New("corrupt data")
)
