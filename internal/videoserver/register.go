// Package videoserver wires the video engine into MCP tools and resources.
package videoserver

import (
	"fmt"

	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/anatolykoptev/go_video/internal/engine/video"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Shared handler state, assembled once at registration from engine config.
var (
	store       *video.Store
	preparer    *video.Preparer
	transcriber *video.Transcriber
)

// RegisterTools registers all video tools and resources on the given MCP server:
// prepare_youtube_video, transcribe_video_part, write_tutorial_article,
// fetch_captions, search_youtube_videos, fetch_reference, list_videos.
func RegisterTools(server *mcp.Server) error {
	st, err := video.NewStore(engine.Cfg.BaseDir)
	if err != nil {
		return fmt.Errorf("videoserver: init store: %w", err)
	}
	store = st
	preparer = &video.Preparer{
		Store: st,
		Tools: video.Toolchain{
			YtDlp:   engine.Cfg.YtDlpBin,
			FFmpeg:  engine.Cfg.FFmpegBin,
			FFprobe: engine.Cfg.FFprobeBin,
		},
	}
	transcriber = video.NewTranscriber(
		engine.Cfg.GeminiAPIBase,
		engine.Cfg.LLMAPIKey,
		engine.Cfg.LLMModel,
		engine.Cfg.TranscribeMaxTokens,
		engine.Cfg.TranscribeRPM,
		nil,
	)

	registerPrepareVideo(server)
	registerTranscribePart(server)
	registerWriteArticle(server)
	registerFetchCaptions(server)
	registerSearchVideos(server)
	registerFetchReference(server)
	registerListVideos(server)
	registerResources(server)
	return nil
}
