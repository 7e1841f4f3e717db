package videoserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_video/internal/engine/video"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerResources exposes prepared videos as MCP resources so clients can
// read manifests and locate part files without a tool round-trip.
func registerResources(server *mcp.Server) {
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "video-manifest",
		Description: "Manifest of a prepared video: title, source URL, parts with time ranges.",
		MIMEType:    "application/json",
		URITemplate: "video://{slug}/manifest",
	}, handleManifestResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "video-part",
		Description: "One prepared part: filename, absolute file path, size and time range.",
		MIMEType:    "application/json",
		URITemplate: "video://{slug}/part/{index}",
	}, handlePartResource)
}

// parseVideoURI splits video://{slug}/{rest} and validates the slug.
func parseVideoURI(uri string) (slug, rest string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "video://")
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported resource URI %q", video.ErrInvalidArgument, uri)
	}
	slug, rest, ok = strings.Cut(trimmed, "/")
	if !ok || slug == "" {
		return "", "", fmt.Errorf("%w: malformed resource URI %q", video.ErrInvalidArgument, uri)
	}
	if !video.ValidSlug(slug) {
		return "", "", fmt.Errorf("%w: malformed slug %q", video.ErrInvalidArgument, slug)
	}
	return slug, rest, nil
}

func handleManifestResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	slug, rest, err := parseVideoURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if rest != "manifest" {
		return nil, fmt.Errorf("%w: expected video://{slug}/manifest, got %q", video.ErrInvalidArgument, req.Params.URI)
	}

	m, err := store.LoadManifest(slug)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// partResource is the JSON body served for video://{slug}/part/{index}.
// FilePath is absolute so callers can upload the media file directly.
type partResource struct {
	Index        int     `json:"index"`
	Filename     string  `json:"filename"`
	FilePath     string  `json:"file_path"`
	SizeMB       float64 `json:"size_mb"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

func handlePartResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	slug, rest, err := parseVideoURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	idxStr, ok := strings.CutPrefix(rest, "part/")
	if !ok {
		return nil, fmt.Errorf("%w: expected video://{slug}/part/{index}, got %q", video.ErrInvalidArgument, req.Params.URI)
	}
	index, err := strconv.Atoi(idxStr)
	if err != nil || index < 0 {
		return nil, fmt.Errorf("%w: bad part index %q", video.ErrInvalidArgument, idxStr)
	}

	part, mediaPath, err := store.LoadPart(slug, index)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(partResource{
		Index:        part.Index,
		Filename:     part.Filename,
		FilePath:     mediaPath,
		SizeMB:       part.SizeMB,
		StartSeconds: part.StartSeconds,
		EndSeconds:   part.EndSeconds,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
