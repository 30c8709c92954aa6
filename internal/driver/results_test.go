package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executed struct {
	query  string
	params map[string]interface{}
}

// MockDriver records auto-commit queries and write transactions. A
// transaction that fails at statement FailAt (1-based) commits nothing.
type MockDriver struct {
	Executed   []executed
	MockResult neo4j.EagerResult
	Err        error

	Attempted [][]Statement
	Committed [][]Statement
	FailAt    int
	WriteErr  error
}

func (m *MockDriver) ExecuteWrite(ctx context.Context, statements []Statement) error {
	m.Attempted = append(m.Attempted, statements)
	if m.FailAt > 0 && m.FailAt <= len(statements) {
		return m.WriteErr
	}
	m.Committed = append(m.Committed, statements)
	return nil
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executed{query, params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func newStore(d GraphDriver) *ResultStore {
	s := NewResultStore(d)
	s.NewID = func() string { return "check-1" }
	s.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSaveVerdict(t *testing.T) {
	d := &MockDriver{}
	link := "https://boardgamegeek.com/boardgame/13"
	v := &model.RiskVerdict{
		PlanID:          42,
		RiskLevel:       model.Caution,
		AnalysisSummary: "summary",
		SimilarGames: []model.SimilarGame{
			{Title: "Catan", SimilarityScore: 66.6, BGGLink: &link},
			{Title: "Azul", SimilarityScore: 40.1},
		},
	}

	require.NoError(t, newStore(d).SaveVerdict(context.Background(), v))
	assert.Empty(t, d.Executed)
	require.Len(t, d.Committed, 1)
	tx := d.Committed[0]
	require.Len(t, tx, 4)

	assert.Equal(t, LockPlanQuery, tx[0].Query)
	assert.Equal(t, int64(42), tx[0].Params["plan_id"])
	assert.Equal(t, DetachCurrentCheckQuery, tx[1].Query)
	assert.Equal(t, int64(42), tx[1].Params["plan_id"])

	save := tx[2].Params
	assert.Equal(t, SaveCheckQuery, tx[2].Query)
	assert.Equal(t, "check-1", save["uuid"])
	assert.Equal(t, "CAUTION", save["risk_level"])
	assert.Equal(t, "2025-03-01T12:00:00Z", save["checked_at"])
	assert.Contains(t, save["similar_games_json"], `"title":"Catan"`)

	assert.Equal(t, LinkSimilarGamesQuery, tx[3].Query)
	assert.Equal(t, "check-1", tx[3].Params["uuid"])
	games := tx[3].Params["games"].([]map[string]interface{})
	require.Len(t, games, 2)
	assert.Equal(t, "Catan", games[0]["title"])
	assert.Equal(t, link, games[0]["bgg_link"])
	assert.Equal(t, "", games[1]["bgg_link"])
}

func TestSaveVerdictWithoutGamesSkipsLinking(t *testing.T) {
	d := &MockDriver{}
	v := &model.RiskVerdict{PlanID: 1, RiskLevel: model.NoRisk, SimilarGames: []model.SimilarGame{}}
	require.NoError(t, newStore(d).SaveVerdict(context.Background(), v))
	require.Len(t, d.Committed, 1)
	assert.Len(t, d.Committed[0], 3)
}

// A failing insert must not leave the previous check detached.
func TestSaveVerdictFailedInsertKeepsCurrentCheck(t *testing.T) {
	d := &MockDriver{FailAt: 3, WriteErr: errors.New("connection reset")}
	v := &model.RiskVerdict{PlanID: 5, RiskLevel: model.Caution, SimilarGames: []model.SimilarGame{{Title: "Azul"}}}

	err := newStore(d).SaveVerdict(context.Background(), v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.Empty(t, d.Executed)
	assert.Empty(t, d.Committed)
	require.Len(t, d.Attempted, 1)
	assert.Equal(t, DetachCurrentCheckQuery, d.Attempted[0][1].Query)
	assert.Equal(t, SaveCheckQuery, d.Attempted[0][2].Query)
}

func TestLatestVerdict(t *testing.T) {
	d := &MockDriver{MockResult: neo4j.EagerResult{
		Keys: []string{"uuid", "risk_level", "summary", "checked_at", "similar_games_json"},
		Records: []*neo4j.Record{{
			Keys:   []string{"uuid", "risk_level", "summary", "checked_at", "similar_games_json"},
			Values: []any{"check-1", "HIGH_RISK", "risky", "2025-03-01T12:00:00Z", `[{"title":"Catan","similarityScore":85.2,"overlappingElements":["x"]}]`},
		}},
	}}

	v, err := newStore(d).LatestVerdict(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.PlanID)
	assert.Equal(t, model.HighRisk, v.RiskLevel)
	assert.Equal(t, "risky", v.AnalysisSummary)
	require.Len(t, v.SimilarGames, 1)
	assert.Equal(t, 85.2, v.SimilarGames[0].SimilarityScore)
	assert.Equal(t, LatestCheckQuery, d.Executed[0].query)
}

func TestLatestVerdictNotFound(t *testing.T) {
	_, err := newStore(&MockDriver{}).LatestVerdict(context.Background(), 7)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
