// Package judge maps similarity scores to risk tiers and approval decisions.
package judge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/copycheck/internal/core/model"
)

const (
	HighRiskThreshold = 0.8
	CautionThreshold  = 0.6
	LowRiskThreshold  = 0.4

	// ApprovalThreshold rejects a design whose best match reaches it.
	ApprovalThreshold = 0.25
	TopApprovalGames  = 5
)

// Display weights for the similarity breakdown.
const (
	mechanicWeight    = 0.45
	descriptionWeight = 0.25
	themeWeight       = 0.20
	complexityWeight  = 0.10
)

const BreakdownNote = "Breakdown components are the total similarity scaled by fixed weights (45/25/20/10); they are not measured separately."

var (
	defaultKeySimilarities = []string{"similar mechanics", "similar description", "shared theme", "similar play experience"}
	defaultDifferences     = []string{"different win conditions", "player interaction style", "game length", "special rules"}
)

// Tier returns the risk level for the maximum similarity of a check.
func Tier(max float64) model.RiskLevel {
	switch {
	case max >= HighRiskThreshold:
		return model.HighRisk
	case max >= CautionThreshold:
		return model.Caution
	case max >= LowRiskThreshold:
		return model.LowRisk
	default:
		return model.NoRisk
	}
}

// Decide applies the approval threshold to the candidates' scores, using the
// LLM-adjusted score where one exists.
func Decide(candidates []model.CandidateGame) *model.ApprovalResult {
	if len(candidates) == 0 {
		return &model.ApprovalResult{
			Decision:        model.Approved,
			MaxSimilarity:   0,
			Reasoning:       "no similar games found.",
			TopSimilarGames: []model.CandidateGame{},
		}
	}

	sorted := make([]model.CandidateGame, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})

	top := sorted
	if len(top) > TopApprovalGames {
		top = top[:TopApprovalGames]
	}
	max := top[0].Score()

	res := &model.ApprovalResult{
		MaxSimilarity:   max,
		TopSimilarGames: top,
	}
	if max >= ApprovalThreshold {
		res.Decision = model.Rejected
		res.Reasoning = fmt.Sprintf("maximum similarity %s meets or exceeds the 25%% threshold.", percent(max))
		res.ComparisonDetails = compare(top[0])
	} else {
		res.Decision = model.Approved
		res.Reasoning = fmt.Sprintf("maximum similarity %s is below the 25%% threshold.", percent(max))
	}
	return res
}

func compare(g model.CandidateGame) *model.ComparisonDetails {
	score := g.Score()

	keySimilarities := g.KeySimilarities
	if len(keySimilarities) == 0 {
		keySimilarities = g.OverlappingElements
	}
	if len(keySimilarities) == 0 {
		keySimilarities = defaultKeySimilarities
	}
	differences := g.Differences
	if len(differences) == 0 {
		differences = defaultDifferences
	}

	return &model.ComparisonDetails{
		MostSimilarGame: g.Name,
		GameInfo: model.GameInfo{
			Name:        g.Name,
			Description: truncate(g.Description, 100) + "...",
			Categories:  firstN(g.Category, 3),
			Mechanisms:  firstN(g.Mechanic, 3),
		},
		TotalSimilarity: percent(score),
		SimilarityBreakdown: model.SimilarityBreakdown{
			MechanicSimilarity:    percent(score * mechanicWeight),
			DescriptionSimilarity: percent(score * descriptionWeight),
			ThemeSimilarity:       percent(score * themeWeight),
			ComplexitySimilarity:  percent(score * complexityWeight),
		},
		BreakdownNote:   BreakdownNote,
		KeySimilarities: keySimilarities,
		Differences:     differences,
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// firstN keeps the first n items of a comma-separated list.
func firstN(list string, n int) string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
		if len(out) == n {
			break
		}
	}
	return strings.Join(out, ", ")
}
