package video

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Transcript is one saved part transcription.
type Transcript struct {
	Index     int    `json:"index"`
	Filename  string `json:"filename"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func (s *Store) transcriptPath(slug string, index int) string {
	return filepath.Join(s.TranscriptsDir(slug), fmt.Sprintf("part_%d.json", index))
}

// WriteTranscript persists tr under {base}/{slug}/transcripts,
// replacing any previous transcript for the part, and returns the path.
func (s *Store) WriteTranscript(slug string, tr *Transcript) (string, error) {
	if err := os.MkdirAll(s.TranscriptsDir(slug), 0o755); err != nil {
		return "", fmt.Errorf("create transcripts dir: %w", err)
	}
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}
	path := s.transcriptPath(slug, tr.Index)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// LoadTranscript reads the saved transcript for one part. A part that
// was never transcribed is ErrNotFound.
func (s *Store) LoadTranscript(slug string, index int) (*Transcript, error) {
	data, err := os.ReadFile(s.transcriptPath(slug, index))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no transcript for part %d of %s", ErrNotFound, index, slug)
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var tr Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("%w: transcript part %d of %s: %v", ErrCorruptData, index, slug, err)
	}
	return &tr, nil
}

// LoadTranscripts returns the transcripts that exist for slug, in part
// order. The manifest is the authority on which parts exist; parts not
// yet transcribed are skipped.
func (s *Store) LoadTranscripts(slug string) ([]Transcript, error) {
	m, err := s.LoadManifest(slug)
	if err != nil {
		return nil, err
	}
	trs := make([]Transcript, 0, len(m.Parts))
	for _, p := range m.Parts {
		tr, err := s.LoadTranscript(slug, p.Index)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		trs = append(trs, *tr)
	}
	return trs, nil
}
