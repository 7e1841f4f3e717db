package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PrepareOps            atomic.Int64
	Downloads             atomic.Int64
	Probes                atomic.Int64
	SegmentRuns           atomic.Int64
	TranscribeCalls       atomic.Int64
	TranscribeErrors      atomic.Int64
	LLMCalls              atomic.Int64
	LLMErrors             atomic.Int64
	FetchRequests         atomic.Int64
	FetchErrors           atomic.Int64
	CaptionRequests       atomic.Int64
	YouTubeSearchRequests atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"prepare_ops":             metrics.PrepareOps.Load(),
		"downloads":               metrics.Downloads.Load(),
		"probes":                  metrics.Probes.Load(),
		"segment_runs":            metrics.SegmentRuns.Load(),
		"transcribe_calls":        metrics.TranscribeCalls.Load(),
		"transcribe_errors":       metrics.TranscribeErrors.Load(),
		"llm_calls":               metrics.LLMCalls.Load(),
		"llm_errors":              metrics.LLMErrors.Load(),
		"fetch_requests":          metrics.FetchRequests.Load(),
		"fetch_errors":            metrics.FetchErrors.Load(),
		"caption_requests":        metrics.CaptionRequests.Load(),
		"youtube_search_requests": metrics.YouTubeSearchRequests.Load(),
		"cache_hits":              hits,
		"cache_misses":            misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"prepare_ops", "downloads", "probes", "segment_runs",
		"transcribe_calls", "transcribe_errors",
		"llm_calls", "llm_errors",
		"fetch_requests", "fetch_errors",
		"caption_requests", "youtube_search_requests",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the video/ sub-package.
func IncrPrepareOps()       { metrics.PrepareOps.Add(1) }
func IncrDownloads()        { metrics.Downloads.Add(1) }
func IncrProbes()           { metrics.Probes.Add(1) }
func IncrSegmentRuns()      { metrics.SegmentRuns.Add(1) }
func IncrTranscribeCalls()  { metrics.TranscribeCalls.Add(1) }
func IncrTranscribeErrors() { metrics.TranscribeErrors.Add(1) }

// Incrementors for the sources/ sub-package.
func IncrCaptionRequests() { metrics.CaptionRequests.Add(1) }
func IncrYouTubeSearch()   { metrics.YouTubeSearchRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
