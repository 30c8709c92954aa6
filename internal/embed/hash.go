package embed

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/agenthands/copycheck/internal/similarity"
)

const (
	hashDimension = 384
	trigramWeight = 0.5
)

// HashModel is a deterministic bag-of-features embedding: word tokens and the
// character trigrams of each padded token are hashed into signed buckets.
// It needs no network and gives lexical-overlap cosine scores.
type HashModel struct {
	dim int
}

func NewHashModel(dim int) *HashModel {
	return &HashModel{dim: dim}
}

func (m *HashModel) Name() string   { return fmt.Sprintf("feature-hash-%d", m.dim) }
func (m *HashModel) Dimension() int { return m.dim }

func (m *HashModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = Normalize(m.vector(t))
	}
	return out, nil
}

func (m *HashModel) vector(text string) []float32 {
	v := make([]float32, m.dim)
	for _, w := range similarity.Words(text) {
		m.add(v, w, 1)
		padded := []rune("#" + w + "#")
		for i := 0; i+3 <= len(padded); i++ {
			m.add(v, string(padded[i:i+3]), trigramWeight)
		}
	}
	return v
}

func (m *HashModel) add(v []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(m.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[bucket] += weight
}
