package embed

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/agenthands/copycheck/internal/core/model"
)

// Encoder loads its model on first use and reuses it for the process
// lifetime. The load ignores the caller's cancellation, so one aborted
// request cannot fail it for everyone. A failed load is not retried.
type Encoder struct {
	key  string
	load func(ctx context.Context) (Model, error)

	once  sync.Once
	model Model
	err   error
}

func NewEncoder(key string, load func(ctx context.Context) (Model, error)) *Encoder {
	return &Encoder{key: key, load: load}
}

// NewStaticEncoder wraps an already loaded model.
func NewStaticEncoder(key string, m Model) *Encoder {
	return NewEncoder(key, func(context.Context) (Model, error) { return m, nil })
}

func (e *Encoder) ModelKey() string { return e.key }

func (e *Encoder) Model(ctx context.Context) (Model, error) {
	e.once.Do(func() {
		e.model, e.err = e.load(context.WithoutCancel(ctx))
		if e.err != nil {
			e.err = fmt.Errorf("%w: %s: %v", model.ErrModelLoad, e.key, e.err)
		}
	})
	return e.model, e.err
}

// Encode returns the L2-normalized embedding of text.
func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	m, err := e.Model(ctx)
	if err != nil {
		return nil, err
	}
	vecs, err := m.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return Normalize(vecs[0]), nil
}

// Normalize scales v to unit length in place. A zero vector is returned as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) * inv)
	}
	return v
}
