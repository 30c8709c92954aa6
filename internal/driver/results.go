package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ResultStore records finished risk verdicts as
// (:Plan)-[:HAS_CHECK]->(:CopyrightCheck)-[:SIMILAR_TO]->(:Game).
type ResultStore struct {
	Driver GraphDriver
	NewID  func() string
	Now    func() time.Time
}

func NewResultStore(d GraphDriver) *ResultStore {
	return &ResultStore{
		Driver: d,
		NewID:  func() string { return uuid.New().String() },
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// SaveVerdict makes v the current check of its plan. The previous check is
// kept behind HAD_CHECK. Everything is written in one transaction.
func (s *ResultStore) SaveVerdict(ctx context.Context, v *model.RiskVerdict) error {
	gamesJSON, err := json.Marshal(v.SimilarGames)
	if err != nil {
		return fmt.Errorf("marshal similar games: %w", err)
	}

	id := s.NewID()
	checkedAt := s.Now().Format(time.RFC3339Nano)
	statements := []Statement{
		{Query: LockPlanQuery, Params: map[string]interface{}{
			"plan_id":    v.PlanID,
			"checked_at": checkedAt,
		}},
		{Query: DetachCurrentCheckQuery, Params: map[string]interface{}{
			"plan_id": v.PlanID,
		}},
		{Query: SaveCheckQuery, Params: map[string]interface{}{
			"plan_id":            v.PlanID,
			"uuid":               id,
			"risk_level":         string(v.RiskLevel),
			"summary":            v.AnalysisSummary,
			"checked_at":         checkedAt,
			"similar_games_json": string(gamesJSON),
		}},
	}

	if len(v.SimilarGames) > 0 {
		games := make([]map[string]interface{}, 0, len(v.SimilarGames))
		for _, g := range v.SimilarGames {
			link := ""
			if g.BGGLink != nil {
				link = *g.BGGLink
			}
			games = append(games, map[string]interface{}{
				"title":    g.Title,
				"score":    g.SimilarityScore,
				"bgg_link": link,
			})
		}
		statements = append(statements, Statement{Query: LinkSimilarGamesQuery, Params: map[string]interface{}{
			"uuid":  id,
			"games": games,
		}})
	}

	if err := s.Driver.ExecuteWrite(ctx, statements); err != nil {
		return fmt.Errorf("save check for plan %d: %w", v.PlanID, err)
	}
	return nil
}

// LatestVerdict returns the current check of a plan, or model.ErrNotFound.
func (s *ResultStore) LatestVerdict(ctx context.Context, planID int64) (*model.RiskVerdict, error) {
	res, err := s.Driver.ExecuteQuery(ctx, LatestCheckQuery, map[string]interface{}{
		"plan_id": planID,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("plan %d: %w", planID, model.ErrNotFound)
	}
	rec := res.Records[0]

	riskLevel, _, err := neo4j.GetRecordValue[string](rec, "risk_level")
	if err != nil {
		return nil, fmt.Errorf("read risk_level: %w", err)
	}
	summary, _, err := neo4j.GetRecordValue[string](rec, "summary")
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	gamesJSON, _, err := neo4j.GetRecordValue[string](rec, "similar_games_json")
	if err != nil {
		return nil, fmt.Errorf("read similar games: %w", err)
	}

	v := &model.RiskVerdict{
		PlanID:          planID,
		RiskLevel:       model.RiskLevel(riskLevel),
		AnalysisSummary: summary,
		SimilarGames:    []model.SimilarGame{},
	}
	if gamesJSON != "" {
		if err := json.Unmarshal([]byte(gamesJSON), &v.SimilarGames); err != nil {
			return nil, fmt.Errorf("decode similar games: %w", err)
		}
	}
	return v, nil
}
