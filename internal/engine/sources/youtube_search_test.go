package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"flat object", `{"a":1}`, `{"a":1}`},
		{"nested with trailing script", `{"a":{"b":[1,2]},"c":"x"};var next = 1;`, `{"a":{"b":[1,2]},"c":"x"}`},
		{"brace inside string", `{"s":"has } inside"}`, `{"s":"has } inside"}`},
		{"escaped quote inside string", `{"s":"esc \" quote}"}`, `{"s":"esc \" quote}"}`},
		{"not an object", `[1,2]`, ""},
		{"unbalanced", `{"a":`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON([]byte(tt.in))
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, string(got))
		})
	}
}

// ytInitialData keeps videoRenderer entries at varying depths; the
// walk must find them in document order and honor the limit.
const initialDataFixture = `{"contents":{"sectionList":{"items":[
  {"videoRenderer":{
     "videoId":"abc123def45",
     "title":{"runs":[{"text":"First Video"}]},
     "ownerText":{"runs":[{"text":"GoChannel"}]},
     "descriptionSnippet":{"runs":[{"text":"learn "},{"text":"go"}]}}},
  {"shelf":{"inner":{"videoRenderer":{
     "videoId":"xyz987uvw32",
     "title":{"runs":[{"text":"Second Video"}]}}}}},
  {"videoRenderer":{
     "videoId":"thirdvid999",
     "title":{"runs":[{"text":"Third Video"}]}}}
]}}}`

func TestExtractVideosFromInitialData(t *testing.T) {
	videos := extractVideosFromInitialData([]byte(initialDataFixture), 10)
	require.Len(t, videos, 3)

	assert.Equal(t, "abc123def45", videos[0].ID)
	assert.Equal(t, "First Video", videos[0].Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123def45", videos[0].URL)
	assert.Equal(t, "GoChannel: learn go", videos[0].Snippet)

	assert.Equal(t, "xyz987uvw32", videos[1].ID)
	assert.Equal(t, "Second Video", videos[1].Title)

	assert.Equal(t, "thirdvid999", videos[2].ID)
}

func TestExtractVideosFromInitialData_Limit(t *testing.T) {
	videos := extractVideosFromInitialData([]byte(initialDataFixture), 2)
	require.Len(t, videos, 2)
	assert.Equal(t, "abc123def45", videos[0].ID)
	assert.Equal(t, "xyz987uvw32", videos[1].ID)
}

func TestExtractVideosFromInitialData_NoResults(t *testing.T) {
	videos := extractVideosFromInitialData([]byte(`{"contents":{"message":"no results"}}`), 5)
	assert.Empty(t, videos)
}
