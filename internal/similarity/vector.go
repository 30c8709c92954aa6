package similarity

import (
	"context"
	"fmt"
	"sort"
)

// Scorer produces one score per corpus row, aligned with the corpus order.
type Scorer interface {
	Scores(ctx context.Context, query string) ([]float64, error)
}

type QueryEncoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// VectorEngine scores by dot product against L2-normalized rows, which equals
// cosine similarity.
type VectorEngine struct {
	Encoder QueryEncoder
	Vectors [][]float32
}

func NewVectorEngine(enc QueryEncoder, vectors [][]float32) *VectorEngine {
	return &VectorEngine{Encoder: enc, Vectors: vectors}
}

func (e *VectorEngine) Scores(ctx context.Context, query string) ([]float64, error) {
	q, err := e.Encoder.Encode(ctx, query)
	if err != nil {
		return nil, err
	}
	return Dot(q, e.Vectors)
}

// Dot returns q·row for every row.
func Dot(q []float32, rows [][]float32) ([]float64, error) {
	scores := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(q) {
			return nil, fmt.Errorf("dimension mismatch at row %d: query %d, row %d", i, len(q), len(row))
		}
		var s float64
		for j, v := range row {
			s += float64(v) * float64(q[j])
		}
		scores[i] = s
	}
	return scores, nil
}

type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rank orders every score descending. Ties keep corpus order.
func Rank(scores []float64) []Hit {
	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{Index: i, Score: s}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	return hits
}

// Top keeps at most k ranked hits whose score is strictly above min.
func Top(hits []Hit, k int, min float64) []Hit {
	out := make([]Hit, 0, k)
	for _, h := range hits {
		if len(out) == k {
			break
		}
		if h.Score > min {
			out = append(out, h)
		}
	}
	return out
}
