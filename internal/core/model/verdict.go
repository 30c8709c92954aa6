package model

// RiskLevel is the tiered copyright risk derived from the maximum similarity.
type RiskLevel string

const (
	NoRisk   RiskLevel = "NO_RISK"
	LowRisk  RiskLevel = "LOW_RISK"
	Caution  RiskLevel = "CAUTION"
	HighRisk RiskLevel = "HIGH_RISK"
)

// SimilarGame is a reported corpus match. SimilarityScore is a percentage
// rounded to one decimal.
type SimilarGame struct {
	Title               string   `json:"title"`
	SimilarityScore     float64  `json:"similarityScore"`
	OverlappingElements []string `json:"overlappingElements"`
	BGGLink             *string  `json:"bggLink,omitempty"`
}

type RiskVerdict struct {
	PlanID          int64         `json:"planId"`
	RiskLevel       RiskLevel     `json:"riskLevel"`
	SimilarGames    []SimilarGame `json:"similarGames"`
	AnalysisSummary string        `json:"analysisSummary"`
}

// Decision is the binary outcome of the approval workflow.
type Decision string

const (
	Approved Decision = "APPROVED"
	Rejected Decision = "REJECTED"
)

// CandidateGame is a scored corpus record considered by the approval judge.
type CandidateGame struct {
	Index               int      `json:"-"`
	GameID              *int64   `json:"game_id"`
	Name                string   `json:"name"`
	Similarity          float64  `json:"similarity"`
	AdjustedSimilarity  *float64 `json:"adjusted_similarity,omitempty"`
	Category            string   `json:"category"`
	Mechanic            string   `json:"mechanic"`
	Description         string   `json:"description"`
	OverlappingElements []string `json:"overlapping_elements,omitempty"`
	KeySimilarities     []string `json:"key_similarities,omitempty"`
	Differences         []string `json:"differences,omitempty"`
}

// Score returns the LLM-adjusted similarity when present, otherwise the raw one.
func (g CandidateGame) Score() float64 {
	if g.AdjustedSimilarity != nil {
		return *g.AdjustedSimilarity
	}
	return g.Similarity
}

type GameInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Categories  string `json:"categories"`
	Mechanisms  string `json:"mechanisms"`
}

// SimilarityBreakdown holds display-only fractions of a single similarity
// score. Each component is the total score multiplied by a fixed weight; none
// is measured independently.
type SimilarityBreakdown struct {
	MechanicSimilarity    string `json:"mechanic_similarity"`
	DescriptionSimilarity string `json:"description_similarity"`
	ThemeSimilarity       string `json:"theme_similarity"`
	ComplexitySimilarity  string `json:"complexity_similarity"`
}

type ComparisonDetails struct {
	MostSimilarGame     string              `json:"most_similar_game"`
	GameInfo            GameInfo            `json:"game_info"`
	TotalSimilarity     string              `json:"total_similarity"`
	SimilarityBreakdown SimilarityBreakdown `json:"similarity_breakdown"`
	BreakdownNote       string              `json:"breakdown_note"`
	KeySimilarities     []string            `json:"key_similarities"`
	Differences         []string            `json:"differences"`
}

type ApprovalResult struct {
	GameTitle         string             `json:"game_title"`
	Decision          Decision           `json:"decision"`
	MaxSimilarity     float64            `json:"max_similarity_score"`
	Reasoning         string             `json:"reasoning"`
	TopSimilarGames   []CandidateGame    `json:"top_similar_games"`
	ComparisonDetails *ComparisonDetails `json:"comparison_details"`
	ProcessingTime    string             `json:"processing_time"`
	TotalGamesChecked int                `json:"total_games_checked"`
	SearchQueriesUsed int                `json:"search_queries_used"`
	DataSource        string             `json:"data_source"`
	PerformanceStats  map[string]any     `json:"performance_stats"`
}
