package videoserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/anatolykoptev/go_video/internal/engine/video"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type WriteArticleInput struct {
	Slug  string `json:"slug" jsonschema:"Video slug returned by prepare_youtube_video"`
	Force bool   `json:"force,omitempty" jsonschema:"Regenerate even if an article was already written"`
}

type WriteArticleOutput struct {
	Slug    string `json:"slug"`
	Article string `json:"article"`
	Path    string `json:"path"`
}

func registerWriteArticle(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "write_tutorial_article",
		Description: "Assemble the saved part transcripts of a prepared video into a standalone tutorial article (markdown) and save it next to the manifest. Returns the existing article unless force is set. Run after transcribing the parts.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input WriteArticleInput) (*mcp.CallToolResult, *WriteArticleOutput, error) {
		if input.Slug == "" {
			return nil, nil, fmt.Errorf("slug is required")
		}
		if !video.ValidSlug(input.Slug) {
			return nil, nil, fmt.Errorf("%w: malformed slug %q", video.ErrInvalidArgument, input.Slug)
		}

		if !input.Force {
			if article, path, err := video.LoadArticle(ctx, store, input.Slug); err == nil {
				return nil, &WriteArticleOutput{Slug: input.Slug, Article: article, Path: path}, nil
			}
		}

		var article, path string
		err := engine.TrackOperation(ctx, "write_tutorial_article", func(ctx context.Context) error {
			var err error
			article, path, err = video.WriteArticle(ctx, store, input.Slug)
			return err
		})
		if err != nil {
			if !errors.Is(err, video.ErrNotFound) && !errors.Is(err, video.ErrCorruptData) {
				markStatus(ctx, input.Slug, video.StatusFailed, err.Error())
			}
			return nil, nil, err
		}

		markStatus(ctx, input.Slug, video.StatusWritten, "")
		return nil, &WriteArticleOutput{Slug: input.Slug, Article: article, Path: path}, nil
	})
}
