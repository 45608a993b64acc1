package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
	"github.com/ewilliams-labs/crescendo/internal/metrics"
)

const maxSampleTracks = 50

// Orchestrator sequences the discovery pipeline end to end: playlist fetch,
// taste profiling, strategy generation, seed resolution, candidate
// gathering, and curation.
type Orchestrator struct {
	catalog    ports.CatalogProvider
	strategy   ports.StrategyProvider
	curator    ports.Curator
	aggregator *Aggregator
	logger     *log.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(catalog ports.CatalogProvider, strategy ports.StrategyProvider, curator ports.Curator, aggregator *Aggregator, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:    catalog,
		strategy:   strategy,
		curator:    curator,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Discover runs the full pipeline for one playlist URL. The orchestrator
// performs no retries; a failure at any stage, including ErrNotAuthenticated
// from the catalog client, propagates to the caller.
func (o *Orchestrator) Discover(ctx context.Context, playlistURL string) (domain.DiscoveryResult, error) {
	runID := uuid.New().String()
	logger := o.logger.With("run", runID)

	playlistID, err := ParsePlaylistID(playlistURL)
	if err != nil {
		return domain.DiscoveryResult{}, err
	}

	tracks, err := o.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return domain.DiscoveryResult{}, fmt.Errorf("discovery: fetch playlist: %w", err)
	}
	logger.Info("playlist fetched", "playlist", playlistID, "tracks", len(tracks))

	profile := domain.BuildTasteProfile(tracks)

	sample := tracks
	if len(sample) > maxSampleTracks {
		sample = sample[:maxSampleTracks]
	}
	strat, err := o.strategy.GenerateStrategy(ctx, profile, sample)
	if err != nil {
		return domain.DiscoveryResult{}, fmt.Errorf("discovery: generate strategy: %w", err)
	}

	var seedArtists, radioQueries []string
	for _, d := range strat.SearchDirections {
		switch d.Type {
		case domain.DirectionSimilarArtist:
			seedArtists = append(seedArtists, d.Query)
		case domain.DirectionTrackRadio:
			radioQueries = append(radioQueries, d.Query)
		}
	}
	seedTrackIDs := resolveTrackSeeds(radioQueries, tracks)
	logger.Info("strategy generated", "artist_seeds", len(seedArtists), "track_seeds", len(seedTrackIDs))

	candidates, err := o.aggregator.Gather(ctx, seedArtists, seedTrackIDs)
	if err != nil {
		return domain.DiscoveryResult{}, fmt.Errorf("discovery: gather candidates: %w", err)
	}

	combined := make([]domain.Track, 0, len(candidates.SimilarArtistTracks)+len(candidates.RadioTracks))
	combined = append(combined, candidates.SimilarArtistTracks...)
	combined = append(combined, candidates.RadioTracks...)
	deduped := domain.DeduplicateTracks(combined)
	logger.Info("candidates gathered", "raw", len(combined), "unique", len(deduped))

	recommendations, err := o.curator.Curate(ctx, strat.TasteAnalysis, profile, deduped, tracks)
	if err != nil {
		return domain.DiscoveryResult{}, fmt.Errorf("discovery: curate: %w", err)
	}
	logger.Info("curation complete", "picks", len(recommendations))
	metrics.DiscoveryRuns.Inc()

	return domain.DiscoveryResult{
		RunID:           runID,
		TasteAnalysis:   strat.TasteAnalysis,
		Recommendations: recommendations,
		TasteProfile:    profile,
		Stats: domain.DiscoveryStats{
			TidalCandidates: len(deduped),
			FinalPicks:      len(recommendations),
		},
	}, nil
}
