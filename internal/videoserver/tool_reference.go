package videoserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type FetchReferenceInput struct {
	URL string `json:"url" jsonschema:"Web page URL to fetch and extract readable text from"`
}

type FetchReferenceOutput struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

func registerFetchReference(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_reference",
		Description: "Fetch a web page and extract its readable text as markdown. Useful for pulling docs or blog posts referenced by a video into the article-writing context.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input FetchReferenceInput) (*mcp.CallToolResult, *FetchReferenceOutput, error) {
		rawURL := strings.TrimSpace(input.URL)
		if rawURL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
			return nil, nil, fmt.Errorf("url must start with http:// or https://")
		}

		cacheKey := engine.CacheKey("reference", rawURL)
		if out, ok := engine.CacheLoadJSON[*FetchReferenceOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		title, content, err := engine.FetchURLContent(ctx, rawURL)
		if err != nil {
			return nil, nil, err
		}

		out := &FetchReferenceOutput{URL: rawURL, Title: title, Content: content}
		engine.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
