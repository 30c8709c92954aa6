package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenthands/copycheck/internal/config"
	"github.com/agenthands/copycheck/internal/core"
	"github.com/agenthands/copycheck/internal/core/extraction"
	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/agenthands/copycheck/internal/embed"
	"github.com/agenthands/copycheck/internal/index"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var games = []model.GameRecord{
	{Title: "Dragon Hunters", Category: "Fantasy, Adventure", Mechanic: "Card Drafting, Dice Rolling", Description: "Heroes embark on an adventure to slay dragons"},
	{Title: "Harbor Trade", Category: "Economic, Nautical", Mechanic: "Set Collection, Auction", Description: "Merchants bid for cargo in a busy port"},
}

type memoryStore struct {
	saved map[int64]*model.RiskVerdict
	err   error
}

func (m *memoryStore) SaveVerdict(ctx context.Context, v *model.RiskVerdict) error {
	m.saved[v.PlanID] = v
	return nil
}

func (m *memoryStore) LatestVerdict(ctx context.Context, planID int64) (*model.RiskVerdict, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.saved[planID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return v, nil
}

func newTestServer(t *testing.T, mock *extraction.MockLLMClient) *Server {
	t.Helper()
	m := embed.NewHashModel(128)
	idx, err := index.Build(context.Background(), games, m, embed.HashKey, 0)
	require.NoError(t, err)

	checker, err := core.NewChecker(index.NewHolder(idx), embed.NewStaticEncoder(embed.HashKey, m), nil,
		extraction.NewExtractor(mock, config.Prompts{}, 0))
	require.NoError(t, err)
	return New(checker, nil)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, &extraction.MockLLMClient{})
	w := do(t, s.SetupRouter(), http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ServiceReady bool   `json:"service_ready"`
		Mode         string `json:"mode"`
		Index        struct {
			ModelKey  string `json:"model_key"`
			NumItems  int    `json:"num_items"`
			Dimension int    `json:"dimension"`
		} `json:"index"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.ServiceReady)
	assert.Equal(t, core.ModeEmbedding, resp.Mode)
	assert.Equal(t, "hash", resp.Index.ModelKey)
	assert.Equal(t, 2, resp.Index.NumItems)
	assert.Equal(t, 128, resp.Index.Dimension)
}

func TestNotReady(t *testing.T) {
	r := New(nil, nil).SetupRouter()

	w := do(t, r, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, r, http.MethodPost, "/api/plans/copyright-check", map[string]any{"planId": 1, "theme": "fantasy"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCopyrightCheck(t *testing.T) {
	s := newTestServer(t, &extraction.MockLLMClient{})
	store := &memoryStore{saved: map[int64]*model.RiskVerdict{}}
	s.Checker.Store = store
	r := s.SetupRouter()

	w := do(t, r, http.MethodPost, "/api/plans/copyright-check", map[string]any{
		"planId":      42,
		"theme":       "Fantasy adventure with dragons",
		"mechanics":   []string{"Card drafting", "Dice rolling"},
		"description": "Heroes embark on a quest to hunt dragons",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var v model.RiskVerdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, int64(42), v.PlanID)
	require.NotEmpty(t, v.SimilarGames)
	assert.Equal(t, "Dragon Hunters", v.SimilarGames[0].Title)

	w = do(t, r, http.MethodGet, "/api/plans/42/copyright", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored model.RiskVerdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, v, stored)

	w = do(t, r, http.MethodGet, "/api/plans/7/copyright", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/plans/abc/copyright", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	store.err = errors.New("connection refused")
	w = do(t, r, http.MethodGet, "/api/plans/42/copyright", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCopyrightCheckValidation(t *testing.T) {
	s := newTestServer(t, &extraction.MockLLMClient{})
	r := s.SetupRouter()

	w := do(t, r, http.MethodPost, "/api/plans/copyright-check", `{"planId": "x"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/plans/copyright-check", map[string]any{"planId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLatestCheckWithoutStore(t *testing.T) {
	s := newTestServer(t, &extraction.MockLLMClient{})
	w := do(t, s.SetupRouter(), http.MethodGet, "/api/plans/1/copyright", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCopyrightPlan(t *testing.T) {
	mock := &extraction.MockLLMClient{
		Response: `{"title": "Dragon Quest", "theme": "Fantasy adventure with dragons", "mechanics": ["Card drafting"], "description": "Heroes hunt dragons"}`,
	}
	s := newTestServer(t, mock)
	r := s.SetupRouter()

	w := do(t, r, http.MethodPost, "/api/plans/copyright-plan", map[string]any{"planId": 3, "summaryText": "드래곤 퀘스트 기획서"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mock.Calls())

	var v model.RiskVerdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, int64(3), v.PlanID)

	w = do(t, r, http.MethodPost, "/api/plans/copyright-plan", map[string]any{"planId": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCopyrightPlanExtractionFailure(t *testing.T) {
	s := newTestServer(t, &extraction.MockLLMClient{Err: errors.New("upstream 500")})
	w := do(t, s.SetupRouter(), http.MethodPost, "/api/plans/copyright-plan", map[string]any{"planId": 3, "summaryText": "plan"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error": "extraction_failed"}`, w.Body.String())
}

func TestApproval(t *testing.T) {
	s := newTestServer(t, &extraction.MockLLMClient{
		Response: `{"title": "Dragon Quest", "search_query": "fantasy dragons adventure card drafting",
			"theme_keywords": "fantasy adventure dragons", "mechanic_keywords": "card drafting dice rolling",
			"description": "Heroes embark on an adventure to slay dragons"}`,
	})
	r := s.SetupRouter()

	w := do(t, r, http.MethodPost, "/api/copyright/approval", map[string]any{
		"game_title": "Dragon Quest",
		"game_plan":  "Heroes embark on an adventure to slay dragons using drafted cards.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res model.ApprovalResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Dragon Quest", res.GameTitle)
	assert.Equal(t, model.Rejected, res.Decision)
	require.NotNil(t, res.ComparisonDetails)
	assert.Equal(t, "Dragon Hunters", res.ComparisonDetails.MostSimilarGame)
	assert.Equal(t, 2, res.TotalGamesChecked)
	assert.Equal(t, "embedding:hash", res.DataSource)
}

func TestApprovalValidation(t *testing.T) {
	s := newTestServer(t, &extraction.MockLLMClient{})
	r := s.SetupRouter()

	tests := map[string]map[string]any{
		"missing title": {"game_plan": "a long enough plan"},
		"long title":    {"game_title": strings.Repeat("가", 101), "game_plan": "a long enough plan"},
		"short plan":    {"game_title": "Short", "game_plan": "too short"},
	}
	for name, body := range tests {
		w := do(t, r, http.MethodPost, "/api/copyright/approval", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	w := do(t, r, http.MethodPost, "/api/copyright/approval", map[string]any{
		"game_title": strings.Repeat("가", 100),
		"game_plan":  "열 글자 이상의 기획서입니다",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServerFromCorpus(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "games.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,game_id,category,mechanic,description\n"+
		"Dragon Hunters,1406,\"Fantasy, Adventure\",Card Drafting,Heroes slay dragons\n"), 0o644))

	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test"
	cfg.Copyright.CacheDir = filepath.Join(dir, "cache")
	cfg.Copyright.CorpusPath = csvPath
	cfg.Copyright.WatchIndex = false

	s, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close(context.Background())

	assert.Equal(t, core.ModeLexical, s.Checker.Mode(context.Background()))
	assert.Nil(t, s.Checker.Store)
	require.NotNil(t, s.Checker.Corpus)
	assert.Len(t, s.Checker.Corpus.Meta, 1)
}

func TestNewServerFromIndex(t *testing.T) {
	dir := t.TempDir()
	m := embed.NewHashModel(384)
	idx, err := index.Build(context.Background(), games, m, embed.HashKey, 0)
	require.NoError(t, err)
	require.NoError(t, index.Write(dir, embed.HashKey, idx))

	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test"
	cfg.Copyright.CacheDir = dir
	cfg.Copyright.CorpusPath = filepath.Join(dir, "missing.csv")
	cfg.Copyright.LLMReview = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := NewServer(ctx, cfg)
	require.NoError(t, err)
	defer s.Close(ctx)

	assert.Equal(t, core.ModeEmbedding, s.Checker.Mode(ctx))
	assert.NotNil(t, s.Checker.Reviewer)
	assert.Equal(t, 2, s.Checker.Index.Load().Len())
}

func TestNewServerWithoutCandidates(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test"
	cfg.Copyright.CacheDir = dir
	cfg.Copyright.CorpusPath = filepath.Join(dir, "missing.csv")
	cfg.Copyright.WatchIndex = false

	_, err := NewServer(context.Background(), cfg)
	assert.ErrorIs(t, err, model.ErrNoCandidates)
}
