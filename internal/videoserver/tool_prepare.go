package videoserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/anatolykoptev/go_video/internal/engine/video"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PrepareVideoInput struct {
	URL    string `json:"url" jsonschema:"YouTube video URL to download and split"`
	PartMB int    `json:"part_mb,omitempty" jsonschema:"Target size per part in MB (default 15)"`
}

func registerPrepareVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "prepare_youtube_video",
		Description: "Download a YouTube video and split it into size-bounded MP4 parts (stream copy, no re-encode). Writes a manifest and returns the slug, the part list with time ranges, and resource URIs for follow-up transcription.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PrepareVideoInput) (*mcp.CallToolResult, *video.PrepareResult, error) {
		if input.URL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		partMB := input.PartMB
		if partMB == 0 {
			partMB = engine.Cfg.TargetPartMB
		}
		if partMB == 0 {
			partMB = video.DefaultPartMB
		}

		var result *video.PrepareResult
		err := engine.TrackOperation(ctx, "prepare_youtube_video", func(ctx context.Context) error {
			var err error
			result, err = preparer.Prepare(ctx, input.URL, partMB)
			return err
		})
		if err != nil {
			return nil, nil, err
		}

		if err := video.RecordPreparedVideo(ctx, result.Slug, result.Title, result.YouTubeURL, len(result.Parts)); err != nil {
			slog.Warn("library: record prepared video failed",
				slog.String("slug", result.Slug), slog.Any("error", err))
		}
		return nil, result, nil
	})
}
