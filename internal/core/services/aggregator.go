package services

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
	"github.com/ewilliams-labs/crescendo/internal/metrics"
)

const (
	maxSimilarPerSeed    = 3
	defaultFanoutWorkers = 4
	maxFanoutWorkers     = 10
	defaultFanoutRate    = 8.0 // catalog requests per second, shared by both pipelines
)

// AggregatorConfig bounds the aggregator's fan-out.
type AggregatorConfig struct {
	Workers   int     // concurrent seeds per pipeline
	RateLimit float64 // catalog requests per second
}

// Aggregator fans out recommendation lookups across seed artists and seed
// tracks. The two sub-pipelines run concurrently, and seeds within each fan
// out over a bounded worker pool behind a shared rate limiter. A failure on
// one seed is logged and skipped; it never aborts the remaining seeds.
type Aggregator struct {
	catalog ports.CatalogProvider
	limiter *rate.Limiter
	workers int
	logger  *log.Logger
}

// NewAggregator constructs an Aggregator over the given catalog.
func NewAggregator(catalog ports.CatalogProvider, cfg AggregatorConfig, logger *log.Logger) *Aggregator {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultFanoutWorkers
	}
	if cfg.Workers > maxFanoutWorkers {
		cfg.Workers = maxFanoutWorkers
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultFanoutRate
	}
	return &Aggregator{
		catalog: catalog,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		workers: cfg.Workers,
		logger:  logger,
	}
}

// Gather runs the similar-artist and track-radio pipelines and returns once
// both have finished. Cancellation discards partial results; the pipeline
// cannot resume a partial gather.
func (a *Aggregator) Gather(ctx context.Context, seedArtists []string, seedTrackIDs []string) (domain.Candidates, error) {
	var out domain.Candidates
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.SimilarArtistTracks = a.gatherSimilar(ctx, seedArtists)
	}()
	go func() {
		defer wg.Done()
		out.RadioTracks = a.gatherRadio(ctx, seedTrackIDs)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.Candidates{}, err
	}
	return out, nil
}

// gatherSimilar resolves each seed artist name to a catalog record, then
// collects top tracks from up to three similar artists per seed.
func (a *Aggregator) gatherSimilar(ctx context.Context, seeds []string) []domain.Track {
	results := a.fanOut(ctx, seeds, a.similarTracksFor)

	var tracks []domain.Track
	for batch := range results {
		tracks = append(tracks, batch...)
	}
	return tracks
}

// gatherRadio fetches radio tracks for each seed track ID, deduplicating by
// catalog ID within this pipeline. Cross-pipeline dedup happens later in the
// orchestrator.
func (a *Aggregator) gatherRadio(ctx context.Context, seedIDs []string) []domain.Track {
	results := a.fanOut(ctx, seedIDs, a.radioTracksFor)

	seen := make(map[string]struct{})
	var tracks []domain.Track
	for batch := range results {
		for _, t := range batch {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// fanOut runs fetch for every seed on a bounded worker pool and returns the
// channel the per-seed batches arrive on. The channel closes once every
// worker has drained.
func (a *Aggregator) fanOut(ctx context.Context, seeds []string, fetch func(context.Context, string) []domain.Track) <-chan []domain.Track {
	jobs := make(chan string)
	results := make(chan []domain.Track, len(seeds))

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range jobs {
				results <- fetch(ctx, seed)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, seed := range seeds {
			select {
			case jobs <- seed:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (a *Aggregator) similarTracksFor(ctx context.Context, name string) []domain.Track {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil
	}
	artist, err := a.catalog.SearchArtist(ctx, name)
	if err != nil {
		a.skip("artist_search", name, err)
		return nil
	}
	if artist == nil {
		// No match is not an error; this seed just has nothing to explore.
		a.logger.Debug("no artist match", "seed", name)
		return nil
	}

	similar, err := a.catalog.SimilarArtists(ctx, artist.ID)
	if err != nil {
		a.skip("similar_artists", name, err)
		return nil
	}
	if len(similar) > maxSimilarPerSeed {
		similar = similar[:maxSimilarPerSeed]
	}

	var tracks []domain.Track
	for _, sim := range similar {
		if err := a.limiter.Wait(ctx); err != nil {
			return tracks
		}
		top, err := a.catalog.ArtistTopTracks(ctx, sim.ID)
		if err != nil {
			a.skip("top_tracks", sim.Name, err)
			continue
		}
		tracks = append(tracks, top...)
	}
	return tracks
}

func (a *Aggregator) radioTracksFor(ctx context.Context, trackID string) []domain.Track {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil
	}
	tracks, err := a.catalog.TrackRadio(ctx, trackID)
	if err != nil {
		a.skip("track_radio", trackID, err)
		return nil
	}
	return tracks
}

// skip records a non-fatal per-seed failure without aborting the batch.
func (a *Aggregator) skip(stage, seed string, err error) {
	metrics.SeedsSkipped.WithLabelValues(stage).Inc()
	a.logger.Warn("seed skipped", "stage", stage, "seed", seed, "err", err)
}
