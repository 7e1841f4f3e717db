package videoserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/anatolykoptev/go_video/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SearchVideosInput struct {
	Query    string `json:"query" jsonschema:"Search query"`
	Language string `json:"language,omitempty" jsonschema:"Relevance language code (default: all)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max videos to return (default 5, max 10)"`
}

type SearchVideosOutput struct {
	Query  string          `json:"query"`
	Videos []sources.Video `json:"videos"`
}

func registerSearchVideos(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_youtube_videos",
		Description: "Search YouTube for videos worth preparing. Returns id, title, URL and snippet per hit; feed a URL into prepare_youtube_video or fetch_captions.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SearchVideosInput) (*mcp.CallToolResult, *SearchVideosOutput, error) {
		if input.Query == "" {
			return nil, nil, fmt.Errorf("query is required")
		}

		cacheKey := engine.CacheKey("yt_search", input.Query, input.Language, fmt.Sprint(input.Limit))
		if out, ok := engine.CacheLoadJSON[*SearchVideosOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		videos, err := sources.SearchYouTube(ctx, input.Query, input.Language, input.Limit)
		if err != nil {
			return nil, nil, err
		}

		out := &SearchVideosOutput{Query: input.Query, Videos: videos}
		engine.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
