package videoserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/anatolykoptev/go_video/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type FetchCaptionsInput struct {
	Video    string `json:"video" jsonschema:"YouTube URL or 11-character video ID"`
	Language string `json:"language,omitempty" jsonschema:"Preferred caption language code (default: configured, usually en)"`
}

type FetchCaptionsOutput struct {
	VideoID  string `json:"video_id"`
	Captions string `json:"captions"`
}

func registerFetchCaptions(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_captions",
		Description: "Fetch the caption/subtitle text of a YouTube video without downloading it. Much cheaper than prepare+transcribe when captions exist; fails for videos without caption tracks.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input FetchCaptionsInput) (*mcp.CallToolResult, *FetchCaptionsOutput, error) {
		videoID := sources.ParseVideoID(input.Video)
		if videoID == "" {
			return nil, nil, fmt.Errorf("video must be a YouTube URL or an 11-character video ID")
		}

		langs := engine.Cfg.CaptionLangs
		if input.Language != "" {
			langs = []string{input.Language}
		}

		cacheKey := engine.CacheKey("captions", videoID, strings.Join(langs, ","))
		if out, ok := engine.CacheLoadJSON[*FetchCaptionsOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		text, err := sources.FetchCaptions(ctx, videoID, langs)
		if err != nil {
			return nil, nil, err
		}

		out := &FetchCaptionsOutput{VideoID: videoID, Captions: text}
		engine.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
