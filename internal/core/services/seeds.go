package services

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
)

const (
	minResolvedSeeds  = 3
	fallbackSeedCount = 5
)

var (
	playlistURLPattern = regexp.MustCompile(`(?i)playlist/([a-f0-9-]+)`)
	rawPlaylistID      = regexp.MustCompile(`(?i)^[a-f0-9-]+$`)
)

// ErrInvalidPlaylistURL indicates the input was neither a recognizable
// playlist share URL nor a raw playlist ID.
var ErrInvalidPlaylistURL = fmt.Errorf("invalid playlist url")

// ParsePlaylistID extracts a playlist ID from a share URL, or accepts a raw
// ID directly.
func ParsePlaylistID(input string) (string, error) {
	if m := playlistURLPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	trimmed := strings.TrimSpace(input)
	if rawPlaylistID.MatchString(trimmed) {
		return trimmed, nil
	}
	return "", fmt.Errorf("%w: could not extract playlist id from %q", ErrInvalidPlaylistURL, input)
}

// resolveTrackSeeds matches the strategy collaborator's free-text radio
// queries against the playlist. A query resolves on exact ID match,
// case-insensitive title substring, or case-insensitive "artist - title"
// substring; the first matching track wins. If fewer than three queries
// resolve, evenly spaced playlist tracks are backfilled so the radio pipeline
// always has seeds.
func resolveTrackSeeds(queries []string, tracks []domain.Track) []string {
	ids := make([]string, 0, len(queries))
	for _, q := range queries {
		lower := strings.ToLower(q)
		for _, t := range tracks {
			if t.ID == q ||
				strings.Contains(strings.ToLower(t.Title), lower) ||
				strings.Contains(strings.ToLower(t.Artist+" - "+t.Title), lower) {
				ids = append(ids, t.ID)
				break
			}
		}
	}

	if len(ids) < minResolvedSeeds && len(tracks) > 0 {
		step := len(tracks) / fallbackSeedCount
		if step < 1 {
			step = 1
		}
		for i := 0; i < fallbackSeedCount && i*step < len(tracks); i++ {
			if id := tracks[i*step].ID; !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}

	return ids
}
