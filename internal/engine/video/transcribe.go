package video

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_video/internal/engine"
)

// transcribeSystemPrompt steers the multimodal model; the wording
// matters for timestamped output.
const transcribeSystemPrompt = "You are an expert video transcriber. Provide a detailed timestamped transcript of the video provided."

// Transcriber sends video parts to the Gemini generateContent endpoint.
// The OpenAI-compatible chat surface cannot carry inline video, so this
// talks to the native API directly.
type Transcriber struct {
	apiBase   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
	limiter   *rate.Limiter
}

// NewTranscriber builds a Transcriber. rpm > 0 throttles requests to
// that many per minute, since parts are transcribed back-to-back and
// the endpoint rate-limits aggressively. A nil client gets a long
// timeout suitable for multi-megabyte uploads.
func NewTranscriber(apiBase, apiKey, model string, maxTokens, rpm int, client *http.Client) *Transcriber {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	var limiter *rate.Limiter
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60), 1)
	}
	return &Transcriber{
		apiBase:   strings.TrimRight(apiBase, "/"),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    client,
		limiter:   limiter,
	}
}

// Gemini generateContent wire types (the subset this client uses).
type geminiBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// videoMIME picks the container MIME type by extension. The two
// containers yt-dlp actually hands us are matched explicitly; anything
// else falls back to the system table, then to video/mp4.
func videoMIME(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".webm":
		return "video/webm"
	case ".mp4":
		return "video/mp4"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "video/mp4"
}

// TranscribeFile reads the video at path, ships it inline to the model
// and returns the transcript text.
func (t *Transcriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: video file %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read video: %w", err)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	engine.IncrTranscribeCalls()

	body := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: fmt.Sprintf("Transcribe this video file: %s. Provide a detailed timestamped transcript.", filepath.Base(path))},
				{InlineData: &geminiBlob{
					MIMEType: videoMIME(path),
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: transcribeSystemPrompt}}},
		GenerationConfig:  &geminiGenConfig{MaxOutputTokens: t.maxTokens},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", t.apiBase, t.model)
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", t.apiKey)
		return t.client.Do(req)
	})
	if err != nil {
		engine.IncrTranscribeErrors()
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		engine.IncrTranscribeErrors()
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		engine.IncrTranscribeErrors()
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, engine.Truncate(string(raw), 300))
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		engine.IncrTranscribeErrors()
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		engine.IncrTranscribeErrors()
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		engine.IncrTranscribeErrors()
		return "", fmt.Errorf("gemini returned empty transcript (finish: %s)", out.Candidates[0].FinishReason)
	}
	return text, nil
}

// PartTranscription is the result of transcribing one prepared part.
type PartTranscription struct {
	Transcript *Transcript
	Path       string
	Cached     bool
}

// TranscribePart transcribes one part of a prepared video and persists
// the result under transcripts/. An existing transcript is returned
// as-is unless force is set, so interrupted runs resume where they
// stopped.
func (t *Transcriber) TranscribePart(ctx context.Context, store *Store, slug string, index int, force bool) (*PartTranscription, error) {
	if !force {
		if tr, err := store.LoadTranscript(slug, index); err == nil {
			return &PartTranscription{Transcript: tr, Path: store.transcriptPath(slug, index), Cached: true}, nil
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	part, mediaPath, err := store.LoadPart(slug, index)
	if err != nil {
		return nil, err
	}

	slog.Info("transcribing part",
		slog.String("slug", slug),
		slog.Int("part", index),
		slog.Float64("size_mb", part.SizeMB))

	text, err := t.TranscribeFile(ctx, mediaPath)
	if err != nil {
		return nil, err
	}

	tr := &Transcript{
		Index:     part.Index,
		Filename:  part.Filename,
		Text:      text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	path, err := store.WriteTranscript(slug, tr)
	if err != nil {
		return nil, err
	}

	if db := GetArchive(); db != nil {
		if err := db.SaveTranscript(ctx, slug, tr); err != nil {
			slog.Warn("archive transcript failed",
				slog.String("slug", slug),
				slog.Int("part", index),
				slog.Any("error", err))
		}
	}
	return &PartTranscription{Transcript: tr, Path: path}, nil
}
