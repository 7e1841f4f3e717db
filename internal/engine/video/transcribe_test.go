package video

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestVideoMIME(t *testing.T) {
	tests := []struct{ path, want string }{
		{"/v/parts/demo_part_000.mp4", "video/mp4"},
		{"/v/parts/demo_part_000.MP4", "video/mp4"},
		{"/v/original.webm", "video/webm"},
	}
	for _, tt := range tests {
		if got := videoMIME(tt.path); got != tt.want {
			t.Errorf("videoMIME(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// fakeGemini serves a canned generateContent response and counts hits.
func fakeGemini(t *testing.T, text string) (*httptest.Server, *atomic.Int64, *geminiRequest) {
	t.Helper()
	var hits atomic.Int64
	var lastReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&lastReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]},"finishReason":"STOP"}]}`, text)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, &lastReq
}

func newTestTranscriber(srv *httptest.Server) *Transcriber {
	return NewTranscriber(srv.URL, "test-key", "gemini-2.5-flash", 512, 0, srv.Client())
}

func TestTranscribeFile(t *testing.T) {
	srv, _, lastReq := fakeGemini(t, "00:00 Hello and welcome.")
	tr := newTestTranscriber(srv)

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "part_000.mp4")
	payload := []byte("fake mp4 data")
	if err := os.WriteFile(videoPath, payload, 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	text, err := tr.TranscribeFile(context.Background(), videoPath)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if text != "00:00 Hello and welcome." {
		t.Errorf("text = %q", text)
	}

	if lastReq.SystemInstruction == nil {
		t.Error("request missing system instruction")
	}
	if len(lastReq.Contents) != 1 || len(lastReq.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %+v", lastReq.Contents)
	}
	blob := lastReq.Contents[0].Parts[1].InlineData
	if blob == nil {
		t.Fatal("request missing inline video data")
	}
	if blob.MIMEType != "video/mp4" {
		t.Errorf("mime = %q", blob.MIMEType)
	}
	if blob.Data != base64.StdEncoding.EncodeToString(payload) {
		t.Error("inline data does not match the video bytes")
	}
}

func TestTranscribeFile_MissingFile(t *testing.T) {
	srv, hits, _ := fakeGemini(t, "unused")
	tr := newTestTranscriber(srv)

	_, err := tr.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "absent.mp4"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("API should not be hit for a missing file, got %d calls", hits.Load())
	}
}

func TestTranscribeFile_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid argument"}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	tr := newTestTranscriber(srv)

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "part_000.mp4")
	writeBytes(t, videoPath, 16)

	_, err := tr.TranscribeFile(context.Background(), videoPath)
	if err == nil {
		t.Fatal("expected error for status 400")
	}
}

func TestTranscribeFile_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[]}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	tr := newTestTranscriber(srv)

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "part_000.mp4")
	writeBytes(t, videoPath, 16)

	_, err := tr.TranscribeFile(context.Background(), videoPath)
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

// transcribeFixture prepares a store with a manifest and a media file
// for part 0.
func transcribeFixture(t *testing.T) (*Store, string) {
	t.Helper()
	s := newTestStore(t)
	m := testManifest(s)
	if err := s.WriteManifest(m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	mediaPath := filepath.Join(s.PartsDir(m.Slug), m.Parts[0].Filename)
	if err := os.MkdirAll(s.PartsDir(m.Slug), 0o755); err != nil {
		t.Fatalf("mkdir parts: %v", err)
	}
	if err := os.WriteFile(mediaPath, []byte("fake mp4 data"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return s, m.Slug
}

func TestTranscribePart(t *testing.T) {
	srv, hits, _ := fakeGemini(t, "00:00 Part zero speech.")
	tr := newTestTranscriber(srv)
	s, slug := transcribeFixture(t)
	ctx := context.Background()

	res, err := tr.TranscribePart(ctx, s, slug, 0, false)
	if err != nil {
		t.Fatalf("TranscribePart: %v", err)
	}
	if res.Cached {
		t.Error("first transcription reported cached")
	}
	if res.Transcript.Text != "00:00 Part zero speech." {
		t.Errorf("text = %q", res.Transcript.Text)
	}
	if res.Transcript.CreatedAt == "" {
		t.Error("missing created_at")
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("transcript file missing: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 API call, got %d", hits.Load())
	}

	// A second run reuses the saved transcript without calling out.
	res, err = tr.TranscribePart(ctx, s, slug, 0, false)
	if err != nil {
		t.Fatalf("cached TranscribePart: %v", err)
	}
	if !res.Cached {
		t.Error("second transcription not served from disk")
	}
	if hits.Load() != 1 {
		t.Errorf("cached run hit the API, calls = %d", hits.Load())
	}

	// force bypasses the saved transcript.
	res, err = tr.TranscribePart(ctx, s, slug, 0, true)
	if err != nil {
		t.Fatalf("forced TranscribePart: %v", err)
	}
	if res.Cached {
		t.Error("forced transcription reported cached")
	}
	if hits.Load() != 2 {
		t.Errorf("expected 2 API calls after force, got %d", hits.Load())
	}
}

func TestTranscribePart_UnknownPart(t *testing.T) {
	srv, _, _ := fakeGemini(t, "unused")
	tr := newTestTranscriber(srv)
	s, slug := transcribeFixture(t)

	_, err := tr.TranscribePart(context.Background(), s, slug, 7, false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTranscribePart_MissingMedia(t *testing.T) {
	srv, _, _ := fakeGemini(t, "unused")
	tr := newTestTranscriber(srv)
	s := newTestStore(t)
	m := testManifest(s)
	if err := s.WriteManifest(m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	_, err := tr.TranscribePart(context.Background(), s, m.Slug, 0, false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
