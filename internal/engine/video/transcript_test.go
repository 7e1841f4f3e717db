package video

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestTranscriptRoundTrip(t *testing.T) {
	s := newTestStore(t)
	const slug = "demo-video-abcd"
	tr := &Transcript{
		Index:     0,
		Filename:  slug + "_part_000.mp4",
		Text:      "00:00 Welcome to the tutorial.",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	path, err := s.WriteTranscript(slug, tr)
	if err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}
	if !strings.HasPrefix(path, s.TranscriptsDir(slug)) {
		t.Errorf("transcript path %q outside transcripts dir", path)
	}

	got, err := s.LoadTranscript(slug, 0)
	if err != nil {
		t.Fatalf("LoadTranscript: %v", err)
	}
	if got.Text != tr.Text || got.Filename != tr.Filename || got.Index != tr.Index {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadTranscript_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadTranscript("demo-video-abcd", 3)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadTranscript_Corrupt(t *testing.T) {
	s := newTestStore(t)
	const slug = "demo-video-abcd"
	if err := os.MkdirAll(s.TranscriptsDir(slug), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(s.transcriptPath(slug, 0), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := s.LoadTranscript(slug, 0)
	if !errors.Is(err, ErrCorruptData) {
		t.Errorf("expected ErrCorruptData, got %v", err)
	}
}

// Parts not yet transcribed are skipped; the ones that exist come back
// in part order.
func TestLoadTranscripts_PartialInOrder(t *testing.T) {
	s := newTestStore(t)
	m := testManifest(s)
	m.Parts = append(m.Parts, PartInfo{
		Index: 2, Filename: m.Slug + "_part_002.mp4", SizeMB: 3.3,
		StartSeconds: 611.4, EndSeconds: 700,
	})
	if err := s.WriteManifest(m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	for _, idx := range []int{2, 0} {
		if _, err := s.WriteTranscript(m.Slug, &Transcript{
			Index:    idx,
			Filename: m.Parts[idx].Filename,
			Text:     "text",
		}); err != nil {
			t.Fatalf("WriteTranscript %d: %v", idx, err)
		}
	}

	trs, err := s.LoadTranscripts(m.Slug)
	if err != nil {
		t.Fatalf("LoadTranscripts: %v", err)
	}
	if len(trs) != 2 {
		t.Fatalf("expected 2 transcripts, got %d", len(trs))
	}
	if trs[0].Index != 0 || trs[1].Index != 2 {
		t.Errorf("order = [%d, %d], want [0, 2]", trs[0].Index, trs[1].Index)
	}
}

func TestLoadTranscripts_NoManifest(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadTranscripts("never-prepared-0000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
