package ports

import (
	"context"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
)

// CatalogProvider is the authenticated slice of the streaming catalog the
// discovery pipeline needs. It is deliberately not a general-purpose SDK:
// only the recommendation surfaces used by the pipeline are exposed.
type CatalogProvider interface {
	// PlaylistTracks reads every track in the playlist, following pagination.
	PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error)

	// SearchArtist returns the best-matching artist record, or nil when the
	// catalog has no match. A miss is not an error.
	SearchArtist(ctx context.Context, name string) (*domain.Artist, error)

	// SimilarArtists returns artists the catalog considers close to the given
	// one.
	SimilarArtists(ctx context.Context, artistID int64) ([]domain.Artist, error)

	// ArtistTopTracks returns the artist's most popular tracks.
	ArtistTopTracks(ctx context.Context, artistID int64) ([]domain.Track, error)

	// TrackRadio returns tracks from the catalog's radio surface seeded by
	// the given track.
	TrackRadio(ctx context.Context, trackID string) ([]domain.Track, error)
}
