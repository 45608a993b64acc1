package ports

import (
	"context"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
)

// DiscoveryStrategy is the strategy collaborator's output contract.
type DiscoveryStrategy struct {
	TasteAnalysis    domain.TasteAnalysis     `json:"tasteAnalysis"`
	SearchDirections []domain.SearchDirection `json:"searchDirections"`
}

// StrategyProvider asks a generative model for a discovery strategy from the
// taste profile and a sample of the playlist. The model is a black box; only
// the input and output schemas matter here.
type StrategyProvider interface {
	GenerateStrategy(ctx context.Context, profile domain.TasteProfile, sampleTracks []domain.Track) (DiscoveryStrategy, error)
}

// Curator asks a generative model to pick the final recommendations from the
// gathered candidates. The existing playlist tracks are passed along so the
// model can exclude music the listener already has.
type Curator interface {
	Curate(ctx context.Context, analysis domain.TasteAnalysis, profile domain.TasteProfile, candidates, existing []domain.Track) ([]domain.Recommendation, error)
}
