package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	maxTopArtists        = 20
	summaryArtistListLen = 10
)

// ArtistCount pairs an artist name with the number of tracks they appear on.
type ArtistCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TasteProfile is a read-only aggregate derived from a track list. It is
// recomputed fresh on every discovery run and never persisted.
type TasteProfile struct {
	TotalTracks   int           `json:"totalTracks"`
	UniqueArtists int           `json:"uniqueArtists"`
	TopArtists    []ArtistCount `json:"topArtists"`
	AvgDuration   int           `json:"avgDuration"`
	SummaryText   string        `json:"summaryText"`
}

// BuildTasteProfile derives aggregate taste signals from a track list.
// Artist frequency groups on exact name equality; ranking is descending by
// count with ties kept in first-seen order. The summary text is consumed
// verbatim by the strategy collaborator, so its shape is part of that
// contract.
func BuildTasteProfile(tracks []Track) TasteProfile {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, t := range tracks {
		if _, seen := counts[t.Artist]; !seen {
			order = append(order, t.Artist)
		}
		counts[t.Artist]++
	}

	top := make([]ArtistCount, 0, len(order))
	for _, name := range order {
		top = append(top, ArtistCount{Name: name, Count: counts[name]})
	}
	// Stable sort keeps first-seen order for equal counts.
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > maxTopArtists {
		top = top[:maxTopArtists]
	}

	avg := 0
	if len(tracks) > 0 {
		total := 0
		for _, t := range tracks {
			total += t.Duration
		}
		avg = int(math.Round(float64(total) / float64(len(tracks))))
	}

	return TasteProfile{
		TotalTracks:   len(tracks),
		UniqueArtists: len(counts),
		TopArtists:    top,
		AvgDuration:   avg,
		SummaryText:   summaryText(len(tracks), len(counts), avg, top),
	}
}

func summaryText(total, unique, avg int, top []ArtistCount) string {
	listed := top
	if len(listed) > summaryArtistListLen {
		listed = listed[:summaryArtistListLen]
	}
	parts := make([]string, 0, len(listed))
	for _, a := range listed {
		parts = append(parts, fmt.Sprintf("%s (%d)", a.Name, a.Count))
	}
	return fmt.Sprintf(
		"Playlist with %d tracks from %d unique artists. Average track duration: %s. Most played artists: %s.",
		total, unique, FormatDuration(avg), strings.Join(parts, ", "),
	)
}

// FormatDuration renders a duration in seconds as M:SS.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
