package engine

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	BaseDir      string // root for per-video directories and the library DB
	TargetPartMB int    // default split size when a tool call omits part_mb

	YtDlpBin   string
	FFmpegBin  string
	FFprobeBin string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMClient          *llm.Client

	GeminiAPIBase       string // native endpoint for inline-video transcription
	TranscribeMaxTokens int
	TranscribeRPM       int // 0 = unthrottled

	CaptionLangs  []string
	YouTubeAPIKey string

	MaxContentChars      int
	FetchTimeout         time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	DatabaseURL string // optional Postgres archive; empty = disabled

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = stealth fallbacks disabled
}

// LibraryDBPath returns the SQLite library location under the base dir.
func (c *Config) LibraryDBPath() string {
	return filepath.Join(c.BaseDir, "library.db")
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (video, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
