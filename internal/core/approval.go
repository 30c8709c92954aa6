package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/agenthands/copycheck/internal/core/evidence"
	"github.com/agenthands/copycheck/internal/core/extraction"
	"github.com/agenthands/copycheck/internal/core/judge"
	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/agenthands/copycheck/internal/similarity"
)

const approvalCandidates = 10

// CheckApproval runs the binary approve/reject workflow on a free-text plan:
// extract search elements, score every query variation, keep each game's best
// score, optionally let the LLM re-score, then apply the threshold.
func (c *Checker) CheckApproval(ctx context.Context, title, plan string) (*model.ApprovalResult, error) {
	start := time.Now()

	el := c.Extractor.ExtractElements(ctx, title, plan)
	extracted := time.Since(start)
	queries := extraction.SearchVariations(el)

	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	searchStart := time.Now()
	best, err := snap.bestScores(ctx, queries)
	if err != nil {
		return nil, err
	}
	searched := time.Since(searchStart)

	design := el.Design()
	hits := similarity.Top(similarity.Rank(best), approvalCandidates, 0)
	candidates := make([]model.CandidateGame, 0, len(hits))
	for _, h := range hits {
		rec := snap.meta[h.Index]
		candidates = append(candidates, model.CandidateGame{
			Index:               h.Index,
			GameID:              rec.GameID,
			Name:                rec.Title,
			Similarity:          h.Score,
			Category:            rec.Category,
			Mechanic:            rec.Mechanic,
			Description:         rec.Description,
			OverlappingElements: evidence.Extract(design, rec),
		})
	}

	reviewed := false
	if c.Reviewer != nil && !el.Degraded && len(candidates) > 0 {
		candidates = c.Reviewer.Review(ctx, el, candidates)
		reviewed = len(candidates) > 0 && candidates[0].AdjustedSimilarity != nil
	}

	res := judge.Decide(candidates)
	res.GameTitle = title
	if el.Degraded {
		res.Reasoning += " Plan analysis was unavailable; the raw plan text was searched."
	}
	res.ProcessingTime = fmt.Sprintf("%.2fs", time.Since(start).Seconds())
	res.TotalGamesChecked = len(snap.meta)
	res.SearchQueriesUsed = len(queries)
	res.DataSource = snap.source
	res.PerformanceStats = map[string]any{
		"mode":              snap.mode,
		"extraction_ms":     extracted.Milliseconds(),
		"search_ms":         searched.Milliseconds(),
		"candidates":        len(candidates),
		"llm_review":        reviewed,
		"elements_degraded": el.Degraded,
	}

	log.Printf("Approval check for %q: %s (max %.3f, %d queries, %s)", title, res.Decision, res.MaxSimilarity, len(queries), snap.mode)
	return res, nil
}

// bestScores keeps each game's highest score over all queries. If the
// embedding engine fails partway, every query is rescored lexically so the
// maxima never mix the two engines.
func (s *snapshot) bestScores(ctx context.Context, queries []string) ([]float64, error) {
	embedding := s.vector != nil
	best := make([]float64, len(s.meta))
	for qi, q := range queries {
		scores, err := s.scores(ctx, q)
		if err != nil {
			return nil, err
		}
		if embedding && s.vector == nil {
			return s.bestScores(ctx, queries)
		}
		for i, v := range scores {
			if qi == 0 || v > best[i] {
				best[i] = v
			}
		}
	}
	return best, nil
}
