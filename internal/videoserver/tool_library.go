package videoserver

import (
	"context"

	"github.com/anatolykoptev/go_video/internal/engine/video"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerListVideos(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_videos",
		Description: "List prepared videos from the local library. Optionally filter by status: prepared, transcribed, written, failed. Returns videos sorted by most recently updated.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input video.LibraryListInput) (*mcp.CallToolResult, *video.LibraryListResult, error) {
		result, err := video.ListLibrary(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}
