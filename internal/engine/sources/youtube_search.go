package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_video/internal/engine"
)

// YouTube search — Data API v3 when a key is configured, ytInitialData
// scraping otherwise.

const (
	ytDataAPIBase       = "https://www.googleapis.com/youtube/v3"
	ytInitialDataMarker = "var ytInitialData = "
	ytSearchFilter      = "EgIQAQ%3D%3D" // videos-only filter param
)

// Video is a single YouTube search hit.
type Video struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// --- YouTube Data API v3 types ---

type ytDataSearchResp struct {
	Items []ytDataItem `json:"items"`
}

type ytDataItem struct {
	ID      ytDataItemID      `json:"id"`
	Snippet ytDataItemSnippet `json:"snippet"`
}

type ytDataItemID struct {
	VideoID string `json:"videoId"`
}

type ytDataItemSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
}

// --- ytInitialData scraping types ---

type ytSearchResult struct {
	VideoRenderer *struct {
		VideoID string `json:"videoId"`
		Title   struct {
			Runs []struct{ Text string } `json:"runs"`
		} `json:"title"`
		OwnerText struct {
			Runs []struct{ Text string } `json:"runs"`
		} `json:"ownerText"`
		DescriptionSnippet *struct {
			Runs []struct{ Text string } `json:"runs"`
		} `json:"descriptionSnippet"`
	} `json:"videoRenderer"`
}

// SearchYouTube searches YouTube videos.
// Uses YouTube Data API v3 when a key is configured; otherwise scrapes ytInitialData.
func SearchYouTube(ctx context.Context, query, language string, limit int) ([]Video, error) {
	engine.IncrYouTubeSearch()
	if limit <= 0 || limit > 10 {
		limit = 5
	}
	if engine.Cfg.YouTubeAPIKey != "" {
		return searchYouTubeDataAPI(ctx, query, language, limit)
	}
	return searchYouTubeInitialData(ctx, query, limit)
}

// searchYouTubeDataAPI searches via YouTube Data API v3.
func searchYouTubeDataAPI(ctx context.Context, query, language string, limit int) ([]Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	params.Set("key", engine.Cfg.YouTubeAPIKey)
	if language != "" && language != "all" {
		params.Set("relevanceLanguage", language)
	}

	apiURL := ytDataAPIBase + "/search?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube data API %d: %s", resp.StatusCode, string(body))
	}

	var result ytDataSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode youtube data API: %w", err)
	}

	videos := make([]Video, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		snippet := engine.TruncateRunes(item.Snippet.ChannelTitle+": "+item.Snippet.Description, 200, "...")
		videos = append(videos, Video{
			ID:      item.ID.VideoID,
			Title:   item.Snippet.Title,
			URL:     "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Snippet: snippet,
		})
	}
	return videos, nil
}

// searchYouTubeInitialData scrapes YouTube search results by parsing ytInitialData.
func searchYouTubeInitialData(ctx context.Context, query string, limit int) ([]Video, error) {
	searchURL := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytSearchFilter

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube search page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read youtube search response: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, fmt.Errorf("ytInitialData not found in YouTube search response")
	}
	jsonData := extractJSON(body[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil, fmt.Errorf("failed to extract ytInitialData JSON")
	}
	return extractVideosFromInitialData(jsonData, limit), nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// extractVideosFromInitialData recursively walks ytInitialData JSON for videoRenderer entries.
func extractVideosFromInitialData(data []byte, limit int) []Video {
	var results []Video
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytSearchResult
				if err := json.Unmarshal(raw, &vr.VideoRenderer); err == nil &&
					vr.VideoRenderer != nil && vr.VideoRenderer.VideoID != "" {
					title := ""
					if len(vr.VideoRenderer.Title.Runs) > 0 {
						title = vr.VideoRenderer.Title.Runs[0].Text
					}
					channel := ""
					if len(vr.VideoRenderer.OwnerText.Runs) > 0 {
						channel = vr.VideoRenderer.OwnerText.Runs[0].Text
					}
					var snippetParts []string
					if vr.VideoRenderer.DescriptionSnippet != nil {
						for _, r := range vr.VideoRenderer.DescriptionSnippet.Runs {
							snippetParts = append(snippetParts, r.Text)
						}
					}
					results = append(results, Video{
						ID:      vr.VideoRenderer.VideoID,
						Title:   title,
						URL:     "https://www.youtube.com/watch?v=" + vr.VideoRenderer.VideoID,
						Snippet: engine.TruncateRunes(channel+": "+strings.Join(snippetParts, ""), 200, "..."),
					})
					return
				}
			}
			for _, child := range obj {
				if len(results) >= limit {
					return
				}
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				if len(results) >= limit {
					return
				}
				walk(item)
			}
		}
	}
	walk(data)
	return results
}
