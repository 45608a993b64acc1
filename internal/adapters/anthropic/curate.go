package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
)

const (
	curateMaxTokens = 8000

	// recommendationSource marks every curated pick as coming from the
	// catalog's similarity surfaces.
	recommendationSource = "tidal-similar"
)

var _ ports.Curator = (*Client)(nil)

// curationReply is the model's output contract for phase two.
type curationReply struct {
	Recommendations []struct {
		Title         string  `json:"title"`
		Artist        string  `json:"artist"`
		Album         string  `json:"album"`
		DiscoveryType string  `json:"discoveryType"`
		Reason        string  `json:"reason"`
		Confidence    float64 `json:"confidence"`
	} `json:"recommendations"`
}

// Curate is phase two: the model picks the best tracks from the gathered
// candidates. Tracks already in the listener's playlist are excluded before
// prompting so the model never wastes picks on music they have.
func (c *Client) Curate(ctx context.Context, analysis domain.TasteAnalysis, profile domain.TasteProfile, candidates, existing []domain.Track) ([]domain.Recommendation, error) {
	existingKeys := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		existingKeys[t.DedupKey()] = struct{}{}
	}
	fresh := make([]domain.Track, 0, len(candidates))
	for _, t := range candidates {
		if _, have := existingKeys[t.DedupKey()]; have {
			continue
		}
		fresh = append(fresh, t)
	}

	var reply curationReply
	if err := c.complete(ctx, curationPrompt(analysis, profile, fresh), curateMaxTokens, &reply); err != nil {
		return nil, err
	}

	recommendations := make([]domain.Recommendation, 0, len(reply.Recommendations))
	for _, r := range reply.Recommendations {
		recommendations = append(recommendations, domain.Recommendation{
			Title:         r.Title,
			Artist:        r.Artist,
			Album:         r.Album,
			Source:        recommendationSource,
			DiscoveryType: r.DiscoveryType,
			Reason:        r.Reason,
			Confidence:    r.Confidence,
		})
	}
	return recommendations, nil
}

func curationPrompt(analysis domain.TasteAnalysis, profile domain.TasteProfile, candidates []domain.Track) string {
	topNames := make([]string, 0, len(profile.TopArtists))
	for i, a := range profile.TopArtists {
		if i == 10 {
			break
		}
		topNames = append(topNames, a.Name)
	}

	var list strings.Builder
	for _, t := range candidates {
		fmt.Fprintf(&list, "- %q by %s (Album: %s, ID: %s)\n", t.Title, t.Artist, t.Album, t.ID)
	}

	return fmt.Sprintf(`You are a music discovery expert. Curate recommendations from Tidal's suggestions.

## User's Taste Analysis
%s
Genres: %s
Moods: %s
Era: %s

## Stats
%d tracks from %d artists in their playlist.
Top artists: %s

## Candidate Tracks from Tidal (%d unique tracks, already excluding playlist tracks)
%s
## Instructions
Select the best 30-50 tracks. For each, provide:
- title, artist, album (exactly as given above)
- discoveryType: "gap_fill" (fills a gap in their collection), "deep_cut" (deep cut from artists/genres they'd appreciate), or "emerging" (newer/rising artists matching their taste)
- reason: One sentence explaining why this fits
- confidence: 0.0 to 1.0

Prioritize quality and diversity. Mix familiar-adjacent picks with genuinely surprising finds.

Respond with valid JSON only, no markdown fences:
{
  "recommendations": [
    {
      "title": "...",
      "artist": "...",
      "album": "...",
      "discoveryType": "gap_fill",
      "reason": "...",
      "confidence": 0.85
    }
  ]
}`,
		analysis.Summary,
		strings.Join(analysis.PrimaryGenres, ", "),
		strings.Join(analysis.MoodDescriptors, ", "),
		analysis.EraPreference,
		profile.TotalTracks, profile.UniqueArtists,
		strings.Join(topNames, ", "),
		len(candidates),
		list.String(),
	)
}
