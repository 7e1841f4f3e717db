package videoserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_video/internal/engine"
	"github.com/anatolykoptev/go_video/internal/engine/video"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TranscribePartInput struct {
	Slug      string `json:"slug" jsonschema:"Video slug returned by prepare_youtube_video"`
	PartIndex int    `json:"part_index" jsonschema:"Zero-based part index from the manifest"`
	Force     bool   `json:"force,omitempty" jsonschema:"Re-transcribe even if a saved transcript exists"`
}

type TranscribePartOutput struct {
	Slug       string `json:"slug"`
	PartIndex  int    `json:"part_index"`
	Filename   string `json:"filename"`
	Transcript string `json:"transcript"`
	Path       string `json:"path"`
	Cached     bool   `json:"cached"`
}

func registerTranscribePart(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcribe_video_part",
		Description: "Transcribe one prepared video part with the configured multimodal model. Saved transcripts are reused, so interrupted multi-part runs resume where they stopped. Pass force=true to redo a part.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscribePartInput) (*mcp.CallToolResult, *TranscribePartOutput, error) {
		if input.Slug == "" {
			return nil, nil, fmt.Errorf("slug is required")
		}
		if !video.ValidSlug(input.Slug) {
			return nil, nil, fmt.Errorf("%w: malformed slug %q", video.ErrInvalidArgument, input.Slug)
		}
		if input.PartIndex < 0 {
			return nil, nil, fmt.Errorf("%w: part_index must be >= 0", video.ErrInvalidArgument)
		}

		var pt *video.PartTranscription
		err := engine.TrackOperation(ctx, "transcribe_video_part", func(ctx context.Context) error {
			var err error
			pt, err = transcriber.TranscribePart(ctx, store, input.Slug, input.PartIndex, input.Force)
			return err
		})
		if err != nil {
			if !errors.Is(err, video.ErrNotFound) && !errors.Is(err, video.ErrInvalidArgument) {
				markStatus(ctx, input.Slug, video.StatusFailed, err.Error())
			}
			return nil, nil, err
		}

		if allPartsTranscribed(input.Slug) {
			markStatus(ctx, input.Slug, video.StatusTranscribed, "")
		}

		return nil, &TranscribePartOutput{
			Slug:       input.Slug,
			PartIndex:  pt.Transcript.Index,
			Filename:   pt.Transcript.Filename,
			Transcript: pt.Transcript.Text,
			Path:       pt.Path,
			Cached:     pt.Cached,
		}, nil
	})
}

// allPartsTranscribed reports whether every manifest part has a saved transcript.
func allPartsTranscribed(slug string) bool {
	m, err := store.LoadManifest(slug)
	if err != nil {
		return false
	}
	trs, err := store.LoadTranscripts(slug)
	if err != nil {
		return false
	}
	return len(trs) == len(m.Parts)
}

// markStatus updates the library row, logging instead of failing the tool call.
func markStatus(ctx context.Context, slug string, status video.VideoStatus, errMsg string) {
	if err := video.MarkVideoStatus(ctx, slug, status, errMsg); err != nil {
		slog.Warn("library: mark status failed",
			slog.String("slug", slug),
			slog.String("status", string(status)),
			slog.Any("error", err))
	}
}
