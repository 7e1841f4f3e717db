// go_video — YouTube video preparation & transcription MCP server.
//
// Downloads YouTube videos, splits them into size-bounded MP4 parts with a
// manifest, transcribes parts through a multimodal model, and assembles
// tutorial articles from the transcripts.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/anatolykoptev/go_video/internal/engine/video"
	"github.com/anatolykoptev/go_video/internal/videoserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	initEngine()

	slog.Info("starting go_video",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_video",
		Version: version,
	}, nil)

	if err := videoserver.RegisterTools(server); err != nil {
		slog.Error("tool registration failed", slog.Any("error", err))
		return
	}
	slog.Info("tools registered", slog.Int("count", 7))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_video",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	baseDir := env.Str("YOUTUBE_MCP_BASE_DIR", "./youtube_data")
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	} else {
		slog.Warn("base dir not resolvable, using as-is", slog.String("dir", baseDir), slog.Any("error", err))
	}

	c := engine.Config{
		BaseDir:              baseDir,
		TargetPartMB:         env.Int("TARGET_PART_MB", 15),
		YtDlpBin:             env.Str("YTDLP_BIN", "yt-dlp"),
		FFmpegBin:            env.Str("FFMPEG_BIN", "ffmpeg"),
		FFprobeBin:           env.Str("FFPROBE_BIN", "ffprobe"),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 16384),
		GeminiAPIBase:        env.Str("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta"),
		TranscribeMaxTokens:  env.Int("TRANSCRIBE_MAX_TOKENS", 8192),
		TranscribeRPM:        env.Int("TRANSCRIBE_RPM", 8),
		CaptionLangs:         env.List("CAPTION_LANGS", "en"),
		YouTubeAPIKey:        env.Str("YOUTUBE_API_KEY", ""),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 6000),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)

	engine.Init(c)

	// Transcript/article archive (PostgreSQL)
	if c.DatabaseURL != "" {
		db, err := video.ConnectArchive(context.Background(), c.DatabaseURL)
		if err != nil {
			slog.Warn("archive init failed", slog.Any("error", err))
		} else {
			video.SetArchive(db)
			slog.Info("archive initialized")
		}
	}

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
