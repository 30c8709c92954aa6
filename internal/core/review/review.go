// Package review asks the LLM to re-score the best candidate games.
package review

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/agenthands/copycheck/internal/core/extraction"
	"github.com/agenthands/copycheck/internal/core/model"
)

const MaxReviewed = 5

// %s: new game block, %s: candidate games block
const DefaultPrompt = `Assess how similar the new board game is to each existing game found by search.

New game:
%s

Existing games:
%s

Re-score each existing game against the new one on four criteria:
1. Core mechanics (45%%): rules, systems, play style
2. Description (25%%): concept, story, overall feel
3. Theme and setting (20%%): background, world, genre
4. Experience and complexity (10%%): difficulty, play time, audience

Return JSON:
{"games": [
  {
    "game_index": 0,
    "adjusted_similarity": 0.75,
    "risk_level": "medium",
    "key_similarities": ["core mechanic A", "similar concept", "shared theme B", "similar complexity"],
    "differences": ["different win condition", "story progression", "player interaction", "special rules"]
  }
]}

Scale: 0.8+ very similar (copyright risk), 0.6-0.8 quite similar, 0.4-0.6 partially similar, below 0.4 low.`

type Reviewer struct {
	Extractor *extraction.Extractor
	Prompt    string
}

func NewReviewer(ex *extraction.Extractor, prompt string) *Reviewer {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Reviewer{Extractor: ex, Prompt: prompt}
}

// Review returns the reviewed games sorted by adjusted similarity. Any
// failure returns games unchanged.
func (r *Reviewer) Review(ctx context.Context, el model.GameElements, games []model.CandidateGame) []model.CandidateGame {
	if len(games) == 0 {
		return games
	}
	top := games
	if len(top) > MaxReviewed {
		top = top[:MaxReviewed]
	}

	prompt := fmt.Sprintf(r.Prompt, describeDesign(el), describeGames(top))
	items, err := r.ask(ctx, prompt)
	if err != nil {
		log.Printf("Warning: LLM review failed, keeping search scores: %v", err)
		return games
	}

	var reviewed []model.CandidateGame
	for _, it := range items {
		if it.GameIndex < 0 || it.GameIndex >= len(top) {
			continue
		}
		g := top[it.GameIndex]
		adjusted := it.AdjustedSimilarity
		g.AdjustedSimilarity = &adjusted
		g.KeySimilarities = it.KeySimilarities
		g.Differences = it.Differences
		reviewed = append(reviewed, g)
	}
	if len(reviewed) == 0 {
		log.Printf("Warning: LLM review returned no usable items, keeping search scores")
		return games
	}

	sort.SliceStable(reviewed, func(i, j int) bool {
		return *reviewed[i].AdjustedSimilarity > *reviewed[j].AdjustedSimilarity
	})
	return reviewed
}

func (r *Reviewer) ask(ctx context.Context, prompt string) ([]model.ReviewItem, error) {
	result, err := extraction.Generate[model.ReviewResult](ctx, r.Extractor, prompt, "review_result")
	if err != nil {
		return nil, err
	}
	if len(result.Games) == 0 {
		return nil, fmt.Errorf("empty review")
	}
	return result.Games, nil
}

func describeDesign(el model.GameElements) string {
	return fmt.Sprintf("Title: %s\nDescription: %s\nTheme: %s\nMechanics: %s",
		el.Title, el.Description, el.ThemeKeywords, el.MechanicKeywords)
}

func describeGames(games []model.CandidateGame) string {
	var sb strings.Builder
	for i, g := range games {
		desc := g.Description
		if r := []rune(desc); len(r) > 300 {
			desc = string(r[:300]) + "..."
		}
		fmt.Fprintf(&sb, "\nGame %d (game_index %d): %s\nDescription: %s\nCategories: %s\nMechanics: %s\n",
			i+1, i, g.Name, desc, g.Category, g.Mechanic)
	}
	return sb.String()
}
