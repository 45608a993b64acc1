package tidal

import (
	"strconv"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
)

// trackFields is the flat track shape used by search, radio and top-track
// responses. Playlist endpoints wrap the same fields under an "item" key.
// The artist appears either as a single object or as the first element of an
// "artists" array, depending on the endpoint.
type trackFields struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Artist   *wireArtist  `json:"artist"`
	Artists  []wireArtist `json:"artists"`
	Album    *wireAlbum   `json:"album"`
	Duration int          `json:"duration"`
}

type wireArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wireAlbum struct {
	Title string `json:"title"`
}

// trackItem is the union of the nested and flat track shapes.
type trackItem struct {
	Item *trackFields `json:"item"`
	trackFields
}

// toDomain normalizes a wire record, preferring the nested shape when both
// are present. A record without an identifier is unparseable; it is reported
// as !ok so callers drop it without failing the batch.
func (ti trackItem) toDomain() (domain.Track, bool) {
	t := ti.trackFields
	if ti.Item != nil {
		t = *ti.Item
	}
	if t.ID == 0 {
		return domain.Track{}, false
	}

	artist := "Unknown"
	if t.Artist != nil && t.Artist.Name != "" {
		artist = t.Artist.Name
	} else if len(t.Artists) > 0 && t.Artists[0].Name != "" {
		artist = t.Artists[0].Name
	}

	album := "Unknown"
	if t.Album != nil && t.Album.Title != "" {
		album = t.Album.Title
	}

	title := t.Title
	if title == "" {
		title = "Unknown"
	}

	return domain.Track{
		ID:       strconv.FormatInt(t.ID, 10),
		Title:    title,
		Artist:   artist,
		Album:    album,
		Duration: t.Duration,
	}, true
}

// mapTracks converts wire records to domain tracks, dropping unparseable
// ones.
func mapTracks(items []trackItem) []domain.Track {
	tracks := make([]domain.Track, 0, len(items))
	for _, it := range items {
		if t, ok := it.toDomain(); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}
