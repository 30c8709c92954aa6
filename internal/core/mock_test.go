package core

import (
	"context"
	"errors"
	"sync"

	"github.com/agenthands/copycheck/internal/core/model"
)

// tableModel returns a fixed vector per text and a zero vector otherwise.
type tableModel struct {
	dim  int
	vecs map[string][]float32
}

func (m *tableModel) Name() string   { return "table" }
func (m *tableModel) Dimension() int { return m.dim }

func (m *tableModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, m.dim)
		copy(v, m.vecs[t])
		out[i] = v
	}
	return out, nil
}

type failingModel struct{ dim int }

func (m failingModel) Name() string   { return "failing" }
func (m failingModel) Dimension() int { return m.dim }
func (m failingModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("provider unavailable")
}

// flakyModel serves ok embedding calls from table and fails the rest.
type flakyModel struct {
	table *tableModel
	ok    int
	calls int
}

func (m *flakyModel) Name() string   { return "table" }
func (m *flakyModel) Dimension() int { return m.table.dim }

func (m *flakyModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.calls > m.ok {
		return nil, errors.New("rate limited")
	}
	return m.table.Embed(ctx, texts)
}

type MockRecorder struct {
	mu      sync.Mutex
	Saved   []*model.RiskVerdict
	SaveErr error
}

func (m *MockRecorder) SaveVerdict(ctx context.Context, v *model.RiskVerdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, v)
	return m.SaveErr
}

func (m *MockRecorder) LatestVerdict(ctx context.Context, planID int64) (*model.RiskVerdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Saved) - 1; i >= 0; i-- {
		if m.Saved[i].PlanID == planID {
			return m.Saved[i], nil
		}
	}
	return nil, model.ErrNotFound
}
