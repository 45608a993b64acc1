package tidal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/crescendo/internal/core/ports"
)

// newTestClient wires a catalog client against a catalog handler and an auth
// server that always grants a fresh token.
func newTestClient(t *testing.T, store *memStore, catalog http.HandlerFunc) *Client {
	t.Helper()

	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, map[string]any{
			"token_type":   "Bearer",
			"access_token": "refreshed",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(authSrv.Close)

	catalogSrv := httptest.NewServer(catalog)
	t.Cleanup(catalogSrv.Close)

	auth := newTestAuthenticator(t, store, authSrv.URL)
	return NewClient(auth, http.DefaultClient, catalogSrv.URL, testLogger())
}

func trackJSON(id int, title, artist string) map[string]any {
	return map[string]any{
		"id":       id,
		"title":    title,
		"artist":   map[string]any{"id": 1, "name": artist},
		"album":    map[string]any{"title": "Album"},
		"duration": 200,
	}
}

func TestClientGet_SendsAuthAndCountryCode(t *testing.T) {
	var gotAuth, gotCountry string
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCountry = r.URL.Query().Get("countryCode")
		writeToken(w, map[string]any{"items": []any{}})
	})

	_, err := c.TrackRadio(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer live", gotAuth)
	// The live session carries DE.
	assert.Equal(t, "DE", gotCountry)
}

func TestClientGet_DefaultCountryCode(t *testing.T) {
	sess := liveSession()
	sess.CountryCode = ""
	var gotCountry string
	c := newTestClient(t, &memStore{sess: &sess}, func(w http.ResponseWriter, r *http.Request) {
		gotCountry = r.URL.Query().Get("countryCode")
		writeToken(w, map[string]any{"items": []any{}})
	})

	_, err := c.TrackRadio(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "US", gotCountry)
}

func TestClientGet_RefreshesOnceOn401(t *testing.T) {
	attempts := 0
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Header.Get("Authorization") != "Bearer refreshed" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeToken(w, map[string]any{"items": []any{trackJSON(7, "Song", "Artist")}})
	})

	tracks, err := c.TrackRadio(context.Background(), "t1")
	require.NoError(t, err)

	// First attempt with the stale token, one retry after the refresh.
	assert.Equal(t, 2, attempts)
	require.Len(t, tracks, 1)
	assert.Equal(t, "7", tracks[0].ID)
}

func TestClientGet_SecondUnauthorizedFailsHard(t *testing.T) {
	attempts := 0
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.TrackRadio(context.Background(), "t1")
	require.ErrorIs(t, err, ports.ErrNotAuthenticated)
	assert.Equal(t, 2, attempts)
}

func TestClientGet_NoSession(t *testing.T) {
	c := newTestClient(t, &memStore{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("catalog should not be called without a session")
	})

	_, err := c.TrackRadio(context.Background(), "t1")
	require.ErrorIs(t, err, ports.ErrNotAuthenticated)
}

func TestClientGet_APIError(t *testing.T) {
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.TrackRadio(context.Background(), "t1")

	var apiErr *ports.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestPlaylistTracks_Pagination(t *testing.T) {
	const total = 120
	var offsets []string
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/playlists/pl-1/tracks", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		offset := 0
		fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &offset)
		offsets = append(offsets, r.URL.Query().Get("offset"))

		items := make([]any, 0)
		for i := offset; i < total && i < offset+100; i++ {
			items = append(items, map[string]any{
				"item": trackJSON(i+1, fmt.Sprintf("Song %d", i), "Artist"),
			})
		}
		writeToken(w, map[string]any{
			"items":              items,
			"totalNumberOfItems": total,
		})
	})

	tracks, err := c.PlaylistTracks(context.Background(), "pl-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "100"}, offsets)
	assert.Len(t, tracks, total)
	assert.Equal(t, "1", tracks[0].ID)
	assert.Equal(t, "120", tracks[len(tracks)-1].ID)
}

func TestPlaylistTracks_EmptyPlaylist(t *testing.T) {
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, map[string]any{"items": []any{}, "totalNumberOfItems": 0})
	})

	tracks, err := c.PlaylistTracks(context.Background(), "pl-1")
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestSearchArtist(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/search", r.URL.Path)
			assert.Equal(t, "Coltrane", r.URL.Query().Get("query"))
			assert.Equal(t, "ARTISTS", r.URL.Query().Get("types"))
			json.NewEncoder(w).Encode(map[string]any{
				"artists": map[string]any{
					"items": []any{map[string]any{"id": 99, "name": "John Coltrane"}},
				},
			})
		})

		artist, err := c.SearchArtist(context.Background(), "Coltrane")
		require.NoError(t, err)
		require.NotNil(t, artist)
		assert.Equal(t, int64(99), artist.ID)
		assert.Equal(t, "John Coltrane", artist.Name)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"artists": map[string]any{"items": []any{}},
			})
		})

		artist, err := c.SearchArtist(context.Background(), "Nobody")
		require.NoError(t, err)
		assert.Nil(t, artist)
	})
}

func TestSimilarArtists(t *testing.T) {
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/artists/99/similar", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"items": []any{
				map[string]any{"id": 1, "name": "A"},
				map[string]any{"id": 2, "name": "B"},
			},
		})
	})

	artists, err := c.SimilarArtists(context.Background(), 99)
	require.NoError(t, err)
	require.Len(t, artists, 2)
	assert.Equal(t, "A", artists[0].Name)
}

func TestArtistTopTracks(t *testing.T) {
	c := newTestClient(t, &memStore{sess: ptr(liveSession())}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/artists/99/toptracks", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"items": []any{trackJSON(5, "Hit", "Artist")},
		})
	})

	tracks, err := c.ArtistTopTracks(context.Background(), 99)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Hit", tracks[0].Title)
}
