package domain

import "strings"

// Track represents a catalog track in the domain layer. Tracks are immutable
// once constructed from a catalog response.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int    `json:"duration"` // seconds
}

// DedupKey identifies a track for deduplication. Catalog IDs are only unique
// within a single fetch, so identity is the lower-cased artist/title pair.
func (t Track) DedupKey() string {
	return strings.ToLower(t.Artist + " - " + t.Title)
}

// DeduplicateTracks removes duplicate tracks by artist and title,
// case-insensitively, keeping the first occurrence and preserving order.
func DeduplicateTracks(tracks []Track) []Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		key := t.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Artist identifies a catalog artist record.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
