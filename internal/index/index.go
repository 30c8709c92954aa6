package index

import (
	"fmt"
	"sync/atomic"

	"github.com/agenthands/copycheck/internal/core/model"
)

type Stats struct {
	ModelKey  string `json:"model_key"`
	ModelName string `json:"model_name"`
	NumItems  int    `json:"num_items"`
	Dimension int    `json:"dimension"`
}

// Index is the embedded corpus. Row i of Vectors, Candidates and Meta describe
// the same game. It is read-only once built or loaded.
type Index struct {
	Vectors    [][]float32
	Candidates []string
	Meta       []model.GameRecord
	Stats      Stats
}

// CandidateText is the text embedded for a corpus record.
func CandidateText(r model.GameRecord) string {
	return r.Category + " " + r.Mechanic + " " + r.Description
}

// Validate checks row alignment and that stats describe the data.
func (idx *Index) Validate() error {
	n := len(idx.Vectors)
	if len(idx.Candidates) != n || len(idx.Meta) != n {
		return fmt.Errorf("%w: misaligned index: %d vectors, %d candidates, %d meta",
			model.ErrConfiguration, n, len(idx.Candidates), len(idx.Meta))
	}
	if idx.Stats.NumItems != n {
		return fmt.Errorf("%w: stats report %d items, index has %d", model.ErrConfiguration, idx.Stats.NumItems, n)
	}
	for i, v := range idx.Vectors {
		if len(v) != idx.Stats.Dimension {
			return fmt.Errorf("%w: row %d has dimension %d, want %d", model.ErrConfiguration, i, len(v), idx.Stats.Dimension)
		}
	}
	return nil
}

func (idx *Index) Len() int { return len(idx.Vectors) }

// Holder publishes the current index. Swaps are atomic, so a reader sees
// either the old or the new index in full.
type Holder struct {
	p atomic.Pointer[Index]
}

func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	if idx != nil {
		h.p.Store(idx)
	}
	return h
}

// Load returns the current index, or nil when none is loaded.
func (h *Holder) Load() *Index { return h.p.Load() }

func (h *Holder) Store(idx *Index) { h.p.Store(idx) }
