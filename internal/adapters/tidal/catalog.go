package tidal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
)

const (
	playlistPageSize   = 100
	artistSearchLimit  = 1
	similarArtistLimit = 3
	topTracksLimit     = 5
	radioLimit         = 10
)

// PlaylistTracks reads the complete playlist, walking fixed-size pages until
// a page comes back empty or the running offset reaches the server-reported
// total. Errors are never a termination condition; they propagate
// immediately.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	var tracks []domain.Track
	offset := 0
	for {
		var page struct {
			Items              []trackItem `json:"items"`
			TotalNumberOfItems int         `json:"totalNumberOfItems"`
		}
		params := url.Values{
			"limit":  {strconv.Itoa(playlistPageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		if err := c.get(ctx, "/v1/playlists/"+playlistID+"/tracks", params, &page); err != nil {
			return nil, err
		}

		tracks = append(tracks, mapTracks(page.Items)...)

		if len(page.Items) == 0 || offset+playlistPageSize >= page.TotalNumberOfItems {
			return tracks, nil
		}
		offset += playlistPageSize
	}
}

// SearchArtist returns the best-matching artist record for the name, or nil
// when the catalog has no match. A miss is not an error.
func (c *Client) SearchArtist(ctx context.Context, name string) (*domain.Artist, error) {
	var res struct {
		Artists struct {
			Items []wireArtist `json:"items"`
		} `json:"artists"`
	}
	params := url.Values{
		"query": {name},
		"types": {"ARTISTS"},
		"limit": {strconv.Itoa(artistSearchLimit)},
	}
	if err := c.get(ctx, "/v1/search", params, &res); err != nil {
		return nil, err
	}
	if len(res.Artists.Items) == 0 {
		return nil, nil
	}
	first := res.Artists.Items[0]
	return &domain.Artist{ID: first.ID, Name: first.Name}, nil
}

// SimilarArtists returns up to three artists the catalog considers close to
// the given one.
func (c *Client) SimilarArtists(ctx context.Context, artistID int64) ([]domain.Artist, error) {
	var res struct {
		Items []wireArtist `json:"items"`
	}
	params := url.Values{"limit": {strconv.Itoa(similarArtistLimit)}}
	if err := c.get(ctx, fmt.Sprintf("/v1/artists/%d/similar", artistID), params, &res); err != nil {
		return nil, err
	}
	artists := make([]domain.Artist, 0, len(res.Items))
	for _, a := range res.Items {
		artists = append(artists, domain.Artist{ID: a.ID, Name: a.Name})
	}
	return artists, nil
}

// ArtistTopTracks returns up to five of the artist's most popular tracks.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID int64) ([]domain.Track, error) {
	var res struct {
		Items []trackItem `json:"items"`
	}
	params := url.Values{"limit": {strconv.Itoa(topTracksLimit)}}
	if err := c.get(ctx, fmt.Sprintf("/v1/artists/%d/toptracks", artistID), params, &res); err != nil {
		return nil, err
	}
	return mapTracks(res.Items), nil
}

// TrackRadio returns up to ten tracks from the radio surface seeded by the
// given track.
func (c *Client) TrackRadio(ctx context.Context, trackID string) ([]domain.Track, error) {
	var res struct {
		Items []trackItem `json:"items"`
	}
	params := url.Values{"limit": {strconv.Itoa(radioLimit)}}
	if err := c.get(ctx, "/v1/tracks/"+trackID+"/radio", params, &res); err != nil {
		return nil, err
	}
	return mapTracks(res.Items), nil
}
