package judge

import (
	"testing"

	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  model.RiskLevel
	}{
		{1.0, model.HighRisk},
		{0.80, model.HighRisk},
		{0.7999, model.Caution},
		{0.60, model.Caution},
		{0.5999, model.LowRisk},
		{0.40, model.LowRisk},
		{0.3999, model.NoRisk},
		{0.0, model.NoRisk},
		{-0.2, model.NoRisk},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tier(tt.score), "score %v", tt.score)
	}
}

func candidate(name string, sim float64) model.CandidateGame {
	return model.CandidateGame{
		Name:        name,
		Similarity:  sim,
		Category:    "Fantasy, Adventure, Card Game, Exploration",
		Mechanic:    "Hand Management, Dice Rolling",
		Description: "A long description of dragons and heroes.",
	}
}

func TestDecideEmpty(t *testing.T) {
	res := Decide(nil)
	assert.Equal(t, model.Approved, res.Decision)
	assert.Equal(t, 0.0, res.MaxSimilarity)
	assert.Equal(t, "no similar games found.", res.Reasoning)
	assert.Empty(t, res.TopSimilarGames)
	assert.Nil(t, res.ComparisonDetails)
}

func TestDecideThresholdIsInclusive(t *testing.T) {
	res := Decide([]model.CandidateGame{candidate("A", 0.25)})
	assert.Equal(t, model.Rejected, res.Decision)
	assert.Equal(t, "maximum similarity 25.0% meets or exceeds the 25% threshold.", res.Reasoning)
	require.NotNil(t, res.ComparisonDetails)

	res = Decide([]model.CandidateGame{candidate("A", 0.2499)})
	assert.Equal(t, model.Approved, res.Decision)
	assert.Equal(t, "maximum similarity 25.0% is below the 25% threshold.", res.Reasoning)
	assert.Nil(t, res.ComparisonDetails)
}

func TestDecideTopFiveByAdjustedScore(t *testing.T) {
	adjusted := 0.9
	boosted := candidate("Boosted", 0.1)
	boosted.AdjustedSimilarity = &adjusted

	cands := []model.CandidateGame{
		candidate("A", 0.30), candidate("B", 0.20), candidate("C", 0.50),
		candidate("D", 0.15), candidate("E", 0.12), boosted, candidate("F", 0.05),
	}
	res := Decide(cands)

	require.Len(t, res.TopSimilarGames, 5)
	var names []string
	for _, g := range res.TopSimilarGames {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Boosted", "C", "A", "B", "D"}, names)
	assert.Equal(t, 0.9, res.MaxSimilarity)
	assert.Equal(t, model.Rejected, res.Decision)
	assert.Equal(t, "Boosted", res.ComparisonDetails.MostSimilarGame)
}

func TestComparisonDetailsBreakdown(t *testing.T) {
	res := Decide([]model.CandidateGame{candidate("Dragon Quest", 0.8)})
	d := res.ComparisonDetails
	require.NotNil(t, d)

	assert.Equal(t, "80.0%", d.TotalSimilarity)
	assert.Equal(t, model.SimilarityBreakdown{
		MechanicSimilarity:    "36.0%",
		DescriptionSimilarity: "20.0%",
		ThemeSimilarity:       "16.0%",
		ComplexitySimilarity:  "8.0%",
	}, d.SimilarityBreakdown)
	assert.Equal(t, BreakdownNote, d.BreakdownNote)
	assert.Equal(t, "Fantasy, Adventure, Card Game", d.GameInfo.Categories)
	assert.Equal(t, "Hand Management, Dice Rolling", d.GameInfo.Mechanisms)
	assert.Equal(t, "A long description of dragons and heroes....", d.GameInfo.Description)
	assert.Equal(t, defaultKeySimilarities, d.KeySimilarities)
	assert.Equal(t, defaultDifferences, d.Differences)
}

func TestComparisonPrefersReviewThenEvidence(t *testing.T) {
	g := candidate("A", 0.5)
	g.OverlappingElements = []string{"theme similarity: fantasy (keywords: dragon)"}
	d := Decide([]model.CandidateGame{g}).ComparisonDetails
	assert.Equal(t, g.OverlappingElements, d.KeySimilarities)

	g.KeySimilarities = []string{"same drafting loop"}
	g.Differences = []string{"no dice"}
	d = Decide([]model.CandidateGame{g}).ComparisonDetails
	assert.Equal(t, []string{"same drafting loop"}, d.KeySimilarities)
	assert.Equal(t, []string{"no dice"}, d.Differences)
}
