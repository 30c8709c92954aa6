package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/agenthands/copycheck/internal/config"
	"github.com/agenthands/copycheck/internal/core/evidence"
	"github.com/agenthands/copycheck/internal/core/extraction"
	"github.com/agenthands/copycheck/internal/core/judge"
	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/agenthands/copycheck/internal/core/review"
	"github.com/agenthands/copycheck/internal/core/summary"
	"github.com/agenthands/copycheck/internal/embed"
	"github.com/agenthands/copycheck/internal/index"
	"github.com/agenthands/copycheck/internal/similarity"
)

const (
	ModeEmbedding = "embedding"
	ModeLexical   = "lexical"

	reportedGames   = 3
	reportThreshold = 0.10
)

// ResultRecorder persists finished verdicts. Implemented by driver.ResultStore.
type ResultRecorder interface {
	SaveVerdict(ctx context.Context, v *model.RiskVerdict) error
	LatestVerdict(ctx context.Context, planID int64) (*model.RiskVerdict, error)
}

// Corpus is the candidate set used for lexical scoring when no index exists.
type Corpus struct {
	Candidates []string
	Meta       []model.GameRecord
}

func NewCorpus(rows []model.GameRecord) *Corpus {
	c := &Corpus{Candidates: make([]string, len(rows)), Meta: rows}
	for i, r := range rows {
		c.Candidates[i] = index.CandidateText(r)
	}
	return c
}

// Checker owns everything a check needs. It holds no request state and is
// safe for concurrent use.
type Checker struct {
	Index     *index.Holder
	Encoder   *embed.Encoder
	Corpus    *Corpus
	Extractor *extraction.Extractor

	// Optional collaborators.
	Reviewer *review.Reviewer
	Store    ResultRecorder

	LinkBase string
}

// NewChecker fails with ErrNoCandidates when there is neither an index nor a
// corpus to score against.
func NewChecker(holder *index.Holder, enc *embed.Encoder, corpus *Corpus, ex *extraction.Extractor) (*Checker, error) {
	if holder == nil {
		holder = index.NewHolder(nil)
	}
	if holder.Load() == nil && corpus == nil {
		return nil, model.ErrNoCandidates
	}
	if ex == nil {
		ex = extraction.NewExtractor(nil, config.Prompts{}, 0)
	}
	return &Checker{
		Index:     holder,
		Encoder:   enc,
		Corpus:    corpus,
		Extractor: ex,
	}, nil
}

// snapshot pins one index for the whole request so a concurrent swap cannot
// mix rows from two indexes.
type snapshot struct {
	vector  *similarity.VectorEngine
	lexical *similarity.LexicalEngine
	meta    []model.GameRecord
	mode    string
	source  string
}

func (s *snapshot) scores(ctx context.Context, query string) ([]float64, error) {
	if s.vector != nil {
		scores, err := s.vector.Scores(ctx, query)
		if err == nil {
			return scores, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Warning: embedding query failed, using lexical similarity: %v", err)
		s.vector = nil
		s.mode = ModeLexical
		s.source = ModeLexical
	}
	return s.lexical.Scores(ctx, query)
}

func (c *Checker) snapshot(ctx context.Context) (*snapshot, error) {
	idx := c.Index.Load()
	if idx == nil {
		if c.Corpus == nil {
			return nil, model.ErrNoCandidates
		}
		return &snapshot{
			lexical: similarity.NewLexicalEngine(c.Corpus.Candidates),
			meta:    c.Corpus.Meta,
			mode:    ModeLexical,
			source:  ModeLexical,
		}, nil
	}

	s := &snapshot{
		lexical: similarity.NewLexicalEngine(idx.Candidates),
		meta:    idx.Meta,
		mode:    ModeLexical,
		source:  ModeLexical,
	}
	if err := c.encoderMatches(ctx, idx); err != nil {
		log.Printf("Warning: %v; using lexical similarity", err)
		return s, nil
	}
	s.vector = similarity.NewVectorEngine(c.Encoder, idx.Vectors)
	s.mode = ModeEmbedding
	s.source = ModeEmbedding + ":" + idx.Stats.ModelKey
	return s, nil
}

func (c *Checker) encoderMatches(ctx context.Context, idx *index.Index) error {
	if c.Encoder == nil {
		return errors.New("no query encoder configured")
	}
	if c.Encoder.ModelKey() != idx.Stats.ModelKey {
		return fmt.Errorf("encoder model %q does not match index model %q", c.Encoder.ModelKey(), idx.Stats.ModelKey)
	}
	m, err := c.Encoder.Model(ctx)
	if err != nil {
		return err
	}
	if m.Dimension() != idx.Stats.Dimension {
		return fmt.Errorf("encoder dimension %d does not match index dimension %d", m.Dimension(), idx.Stats.Dimension)
	}
	return nil
}

// Mode reports whether checks currently use the embedding index or the
// lexical fallback.
func (c *Checker) Mode(ctx context.Context) string {
	idx := c.Index.Load()
	if idx == nil || c.encoderMatches(ctx, idx) != nil {
		return ModeLexical
	}
	return ModeEmbedding
}

// CheckRisk scores a design against the whole corpus and reports the top
// matches above 10%.
func (c *Checker) CheckRisk(ctx context.Context, design model.Design) (*model.RiskVerdict, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := snap.scores(ctx, design.QueryText())
	if err != nil {
		return nil, err
	}

	hits := similarity.Rank(scores)
	max := 0.0
	if len(hits) > 0 {
		max = hits[0].Score
	}
	level := judge.Tier(max)

	games := make([]model.SimilarGame, 0, reportedGames)
	for _, h := range similarity.Top(hits, reportedGames, reportThreshold) {
		rec := snap.meta[h.Index]
		games = append(games, model.SimilarGame{
			Title:               rec.Title,
			SimilarityScore:     math.Round(h.Score*1000) / 10,
			OverlappingElements: nonNil(evidence.Extract(design, rec)),
			BGGLink:             c.link(rec),
		})
	}

	verdict := &model.RiskVerdict{
		PlanID:          design.PlanID,
		RiskLevel:       level,
		SimilarGames:    games,
		AnalysisSummary: summary.Render(level, games),
	}
	log.Printf("Copyright check for plan %d: %s (max %.3f, %d reported, %s)", design.PlanID, level, max, len(games), snap.mode)

	c.record(ctx, verdict)
	return verdict, nil
}

// CheckPlan extracts a design from free text, then checks it.
func (c *Checker) CheckPlan(ctx context.Context, planID int64, text string) (*model.RiskVerdict, error) {
	design, err := c.Extractor.Process(ctx, planID, text)
	if err != nil {
		return nil, err
	}
	return c.CheckRisk(ctx, design)
}

// LatestVerdict returns the stored check for a plan.
func (c *Checker) LatestVerdict(ctx context.Context, planID int64) (*model.RiskVerdict, error) {
	if c.Store == nil {
		return nil, errors.New("result store not configured")
	}
	return c.Store.LatestVerdict(ctx, planID)
}

func (c *Checker) record(ctx context.Context, v *model.RiskVerdict) {
	if c.Store == nil {
		return
	}
	if err := c.Store.SaveVerdict(ctx, v); err != nil {
		log.Printf("Warning: failed to store copyright check for plan %d: %v", v.PlanID, err)
	}
}

func (c *Checker) link(rec model.GameRecord) *string {
	if rec.GameID == nil || c.LinkBase == "" {
		return nil
	}
	l := c.LinkBase + strconv.FormatInt(*rec.GameID, 10)
	return &l
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
