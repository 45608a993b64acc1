package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
)

const strategyMaxTokens = 4000

var _ ports.StrategyProvider = (*Client)(nil)

// GenerateStrategy is phase one: the model analyzes the playlist and decides
// which artists and radio seeds to explore.
func (c *Client) GenerateStrategy(ctx context.Context, profile domain.TasteProfile, sampleTracks []domain.Track) (ports.DiscoveryStrategy, error) {
	var strategy ports.DiscoveryStrategy
	if err := c.complete(ctx, strategyPrompt(profile, sampleTracks), strategyMaxTokens, &strategy); err != nil {
		return ports.DiscoveryStrategy{}, err
	}
	return strategy, nil
}

func strategyPrompt(profile domain.TasteProfile, sampleTracks []domain.Track) string {
	var artists strings.Builder
	for _, a := range profile.TopArtists {
		fmt.Fprintf(&artists, "- %s: %d tracks\n", a.Name, a.Count)
	}

	var samples strings.Builder
	for _, t := range sampleTracks {
		fmt.Fprintf(&samples, "%q by %s (%s)\n", t.Title, t.Artist, t.Album)
	}

	return fmt.Sprintf(`You are a music discovery expert. Analyze this playlist and create a discovery strategy.

## Taste Profile
%s

Top artists by track count:
%s
## Sample Tracks (first %d of %d)
%s
## Instructions
1. Analyze the user's music taste - genres, moods, eras, patterns.
2. Create a discovery strategy: suggest specific artists to find similar music for, and specific tracks to use as radio seeds.
   - Pick artists that will lead to interesting discoveries (not just more of the same)
   - Include some "stretch" picks that push boundaries while staying within reach
   - Suggest 8-12 similar_artist searches and 5-8 track_radio seeds
   - For track_radio seeds, use the exact track title from the sample list

Respond with valid JSON only, no markdown fences:
{
  "tasteAnalysis": {
    "summary": "2-3 sentence analysis",
    "primaryGenres": ["genre1", "genre2"],
    "moodDescriptors": ["mood1", "mood2"],
    "eraPreference": "description of era preferences"
  },
  "searchDirections": [
    { "type": "similar_artist", "query": "Artist Name", "reason": "why this direction" },
    { "type": "track_radio", "query": "Track Title", "reason": "why this seed" }
  ]
}`,
		profile.SummaryText,
		artists.String(),
		len(sampleTracks), profile.TotalTracks,
		samples.String(),
	)
}
