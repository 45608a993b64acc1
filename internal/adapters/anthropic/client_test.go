package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
)

// replyWith returns a handler that answers every messages call with the
// given model text, capturing the prompt it was sent.
func replyWith(t *testing.T, text string, gotPrompt *string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Messages, 1)
		if gotPrompt != nil {
			*gotPrompt = req.Messages[0].Content
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content": []any{map[string]any{"type": "text", "text": text}},
		})
	}
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(nil, srv.URL, "test-key", "")
}

func TestGenerateStrategy(t *testing.T) {
	reply := `{
		"tasteAnalysis": {
			"summary": "modal jazz devotee",
			"primaryGenres": ["jazz"],
			"moodDescriptors": ["contemplative"],
			"eraPreference": "late 50s to mid 60s"
		},
		"searchDirections": [
			{"type": "similar_artist", "query": "Pharoah Sanders", "reason": "spiritual jazz adjacency"},
			{"type": "track_radio", "query": "So What", "reason": "modal anchor"}
		]
	}`
	var prompt string
	c := testClient(t, replyWith(t, reply, &prompt))

	profile := domain.TasteProfile{
		TotalTracks:   3,
		UniqueArtists: 2,
		TopArtists:    []domain.ArtistCount{{Name: "John Coltrane", Count: 2}},
		SummaryText:   "Playlist with 3 tracks from 2 unique artists.",
	}
	sample := []domain.Track{{Title: "Blue Train", Artist: "John Coltrane", Album: "Blue Train"}}

	strategy, err := c.GenerateStrategy(context.Background(), profile, sample)
	require.NoError(t, err)

	assert.Equal(t, "modal jazz devotee", strategy.TasteAnalysis.Summary)
	require.Len(t, strategy.SearchDirections, 2)
	assert.Equal(t, domain.DirectionSimilarArtist, strategy.SearchDirections[0].Type)
	assert.Equal(t, "Pharoah Sanders", strategy.SearchDirections[0].Query)

	// The prompt carries the profile summary and the sample tracks.
	assert.Contains(t, prompt, "Playlist with 3 tracks from 2 unique artists.")
	assert.Contains(t, prompt, "John Coltrane: 2 tracks")
	assert.Contains(t, prompt, `"Blue Train" by John Coltrane`)
}

func TestGenerateStrategy_FencedReply(t *testing.T) {
	fenced := "```json\n{\"tasteAnalysis\": {\"summary\": \"ok\"}, \"searchDirections\": []}\n```"
	c := testClient(t, replyWith(t, fenced, nil))

	strategy, err := c.GenerateStrategy(context.Background(), domain.TasteProfile{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", strategy.TasteAnalysis.Summary)
}

func TestCurate(t *testing.T) {
	reply := `{
		"recommendations": [
			{"title": "Footprints", "artist": "Wayne Shorter", "album": "Adam's Apple",
			 "discoveryType": "gap_fill", "reason": "fills the post-bop gap", "confidence": 0.9}
		]
	}`
	var prompt string
	c := testClient(t, replyWith(t, reply, &prompt))

	candidates := []domain.Track{
		{ID: "c1", Title: "Footprints", Artist: "Wayne Shorter", Album: "Adam's Apple"},
		{ID: "c2", Title: "Blue Train", Artist: "John Coltrane", Album: "Blue Train"},
	}
	existing := []domain.Track{
		{ID: "p1", Title: "blue train", Artist: "JOHN COLTRANE"},
	}

	recs, err := c.Curate(context.Background(), domain.TasteAnalysis{Summary: "s"}, domain.TasteProfile{}, candidates, existing)
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.Equal(t, "Footprints", recs[0].Title)
	assert.Equal(t, "tidal-similar", recs[0].Source)
	assert.Equal(t, domain.DiscoveryGapFill, recs[0].DiscoveryType)
	assert.InDelta(t, 0.9, recs[0].Confidence, 1e-9)

	// Candidates the listener already has never reach the model.
	assert.Contains(t, prompt, "Footprints")
	assert.NotContains(t, prompt, "Blue Train")
	assert.Contains(t, prompt, "1 unique tracks")
}

func TestComplete_APIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "invalid_request_error", "message": "max_tokens too large"},
		})
	})

	_, err := c.GenerateStrategy(context.Background(), domain.TasteProfile{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
	assert.Contains(t, err.Error(), "max_tokens too large")
}

func TestComplete_EmptyReply(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	})

	_, err := c.GenerateStrategy(context.Background(), domain.TasteProfile{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestComplete_MalformedReplyJSON(t *testing.T) {
	c := testClient(t, replyWith(t, "I think you would enjoy some jazz.", nil))

	_, err := c.GenerateStrategy(context.Background(), domain.TasteProfile{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode reply json")
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, stripFences(tc.in), "input %q", tc.in)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil, "", "key", "")
	assert.Equal(t, "https://api.anthropic.com", c.baseURL)
	assert.Equal(t, "claude-sonnet-4-6", c.model)
	assert.NotNil(t, c.httpClient)

	trimmed := NewClient(nil, "https://example.com/", "key", "custom")
	assert.Equal(t, "https://example.com", trimmed.baseURL)
	assert.Equal(t, "custom", trimmed.model)
}
