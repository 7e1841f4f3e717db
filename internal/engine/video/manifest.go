package video

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	manifestFile       = "manifest.json"
	transcriptsDirName = "transcripts"
	articleFile        = "article.md"
)

// PartInfo describes one split segment. Field names are the wire
// contract for manifest.json and the part resource.
type PartInfo struct {
	Index        int     `json:"index"`
	Filename     string  `json:"filename"`
	SizeMB       float64 `json:"size_mb"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// VideoManifest is the durable record of a prepared video, written to
// {base}/{slug}/manifest.json only after every preparation step has
// succeeded.
type VideoManifest struct {
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	YouTubeURL    string     `json:"youtube_url"`
	BaseDir       string     `json:"base_dir"`
	OriginalVideo string     `json:"original_video"`
	PartSizeMB    int        `json:"part_size_mb"`
	Parts         []PartInfo `json:"parts"`
}

// validate rejects manifests a round-trip could not have produced.
// Loading fails closed: a manifest missing required fields is corrupt,
// not partially usable.
func (m *VideoManifest) validate() error {
	switch {
	case m.Slug == "":
		return errors.New("missing slug")
	case m.Title == "":
		return errors.New("missing title")
	case m.YouTubeURL == "":
		return errors.New("missing youtube_url")
	case m.BaseDir == "":
		return errors.New("missing base_dir")
	case m.OriginalVideo == "":
		return errors.New("missing original_video")
	case m.PartSizeMB <= 0:
		return fmt.Errorf("invalid part_size_mb %d", m.PartSizeMB)
	case len(m.Parts) == 0:
		return errors.New("no parts")
	}
	for i, p := range m.Parts {
		if p.Filename == "" {
			return fmt.Errorf("part %d: missing filename", i)
		}
		if p.Index != i {
			return fmt.Errorf("part %d: index %d out of order", i, p.Index)
		}
	}
	return nil
}

// Store owns the on-disk layout under one base directory:
//
//	{base}/{slug}/{slug}.mp4
//	{base}/{slug}/manifest.json
//	{base}/{slug}/parts/{slug}_part_NNN.mp4
//	{base}/{slug}/transcripts/part_{index}.json
//	{base}/{slug}/article.md
type Store struct {
	base string
}

// NewStore resolves base to an absolute path and creates it.
func NewStore(base string) (*Store, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir %s: %w", base, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", abs, err)
	}
	return &Store{base: abs}, nil
}

// Base returns the absolute base directory.
func (s *Store) Base() string { return s.base }

// VideoDir returns the per-video directory for slug.
func (s *Store) VideoDir(slug string) string { return filepath.Join(s.base, slug) }

// PartsDir returns the split-output directory for slug.
func (s *Store) PartsDir(slug string) string {
	return filepath.Join(s.base, slug, partsDirName)
}

// TranscriptsDir returns the transcript directory for slug.
func (s *Store) TranscriptsDir(slug string) string {
	return filepath.Join(s.base, slug, transcriptsDirName)
}

// ArticlePath returns the assembled article path for slug.
func (s *Store) ArticlePath(slug string) string {
	return filepath.Join(s.base, slug, articleFile)
}

func (s *Store) manifestPath(slug string) string {
	return filepath.Join(s.base, slug, manifestFile)
}

// WriteManifest persists m as indented JSON, replacing any previous
// manifest for the slug.
func (s *Store) WriteManifest(m *VideoManifest) error {
	if err := os.MkdirAll(s.VideoDir(m.Slug), 0o755); err != nil {
		return fmt.Errorf("create video dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(s.manifestPath(m.Slug), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads and validates the manifest for slug. A slug that
// was never prepared is ErrNotFound; a manifest that exists but cannot
// be decoded or fails validation is ErrCorruptData.
func (s *Store) LoadManifest(slug string) (*VideoManifest, error) {
	data, err := os.ReadFile(s.manifestPath(slug))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no manifest for %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("read manifest for %s: %w", slug, err)
	}
	var m VideoManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest for %s: %v", ErrCorruptData, slug, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: manifest for %s: %v", ErrCorruptData, slug, err)
	}
	return &m, nil
}

// LoadPart returns the part with the given index plus the absolute
// path of its media file.
func (s *Store) LoadPart(slug string, index int) (*PartInfo, string, error) {
	m, err := s.LoadManifest(slug)
	if err != nil {
		return nil, "", err
	}
	for i := range m.Parts {
		if m.Parts[i].Index == index {
			path := filepath.Join(m.BaseDir, partsDirName, m.Parts[i].Filename)
			return &m.Parts[i], path, nil
		}
	}
	return nil, "", fmt.Errorf("%w: part %d of %s", ErrNotFound, index, slug)
}

// ManifestResourceURI names the manifest resource for slug.
func ManifestResourceURI(slug string) string {
	return fmt.Sprintf("video://%s/manifest", slug)
}

// PartResourceURI names the part resource for slug and index.
func PartResourceURI(slug string, index int) string {
	return fmt.Sprintf("video://%s/part/%d", slug, index)
}
