package index

import (
	"context"
	"fmt"
	"log"

	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/agenthands/copycheck/internal/embed"
)

const DefaultBatchSize = 256

// Build embeds every record in batches. Vectors are normalized regardless of
// what the model returns.
func Build(ctx context.Context, rows []model.GameRecord, m embed.Model, modelKey string, batchSize int) (*Index, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	candidates := make([]string, len(rows))
	for i, r := range rows {
		candidates[i] = CandidateText(r)
	}

	vectors := make([][]float32, 0, len(rows))
	for start := 0; start < len(candidates); start += batchSize {
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch, err := m.Embed(ctx, candidates[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed rows %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embed rows %d-%d: got %d vectors", start, end-1, len(batch))
		}
		for _, v := range batch {
			vectors = append(vectors, embed.Normalize(v))
		}
		log.Printf("Embedded %d/%d records", end, len(candidates))
	}

	meta := make([]model.GameRecord, len(rows))
	copy(meta, rows)

	idx := &Index{
		Vectors:    vectors,
		Candidates: candidates,
		Meta:       meta,
		Stats: Stats{
			ModelKey:  modelKey,
			ModelName: m.Name(),
			NumItems:  len(rows),
			Dimension: m.Dimension(),
		},
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}
