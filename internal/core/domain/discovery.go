package domain

// Search direction types returned by the strategy collaborator.
const (
	DirectionSimilarArtist = "similar_artist"
	DirectionTrackRadio    = "track_radio"
)

// SearchDirection is one exploration lead from the strategy collaborator:
// either an artist to find similar music for, or a free-text track query to
// resolve into a radio seed.
type SearchDirection struct {
	Type   string `json:"type"`
	Query  string `json:"query"`
	Reason string `json:"reason"`
}

// TasteAnalysis is the strategy collaborator's reading of the listener.
type TasteAnalysis struct {
	Summary         string   `json:"summary"`
	PrimaryGenres   []string `json:"primaryGenres"`
	MoodDescriptors []string `json:"moodDescriptors"`
	EraPreference   string   `json:"eraPreference"`
}

// Discovery types assigned by the curation collaborator.
const (
	DiscoveryGapFill  = "gap_fill"
	DiscoveryDeepCut  = "deep_cut"
	DiscoveryEmerging = "emerging"
)

// Recommendation is one curated pick in the final result.
type Recommendation struct {
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	Album         string  `json:"album"`
	Source        string  `json:"source"`
	DiscoveryType string  `json:"discoveryType"`
	Reason        string  `json:"reason"`
	Confidence    float64 `json:"confidence"`
}

// Candidates groups the output of the two recommendation pipelines before
// cross-pipeline deduplication.
type Candidates struct {
	SimilarArtistTracks []Track
	RadioTracks         []Track
}

// DiscoveryStats summarizes a finished run.
type DiscoveryStats struct {
	TidalCandidates int `json:"tidalCandidates"`
	FinalPicks      int `json:"finalPicks"`
}

// DiscoveryResult is the terminal artifact of a discovery run, constructed
// once by the orchestrator and never mutated afterwards.
type DiscoveryResult struct {
	RunID           string           `json:"runId"`
	TasteAnalysis   TasteAnalysis    `json:"tasteAnalysis"`
	Recommendations []Recommendation `json:"recommendations"`
	TasteProfile    TasteProfile     `json:"tasteProfile"`
	Stats           DiscoveryStats   `json:"stats"`
}
