package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agenthands/copycheck/internal/core/model"
)

const (
	EmbeddingsFile = "embeddings.npy"
	CandidatesFile = "candidates.json"
	MetaFile       = "meta.json"
	StatsFile      = "stats.json"
)

// Dir is where the index for modelKey lives under root.
func Dir(root, modelKey string) string {
	return filepath.Join(root, modelKey)
}

// Write persists idx under root/<modelKey>. Files go to a hidden sibling
// directory first and replace the published directory in one rename, so a
// failed write leaves the previous index untouched.
func Write(root, modelKey string, idx *Index) (err error) {
	if err := idx.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.MkdirTemp(root, "."+modelKey+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(tmp)
		}
	}()

	if err := writeFile(filepath.Join(tmp, EmbeddingsFile), func(f *os.File) error {
		return writeNPY(f, idx.Vectors, idx.Stats.Dimension)
	}); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}
	if err := writeJSON(filepath.Join(tmp, CandidatesFile), idx.Candidates); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	if err := writeJSON(filepath.Join(tmp, MetaFile), idx.Meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	if err := writeJSON(filepath.Join(tmp, StatsFile), idx.Stats); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}

	final := Dir(root, modelKey)
	old := tmp + ".old"
	hadOld := false
	if _, statErr := os.Stat(final); statErr == nil {
		if err := os.Rename(final, old); err != nil {
			return fmt.Errorf("move previous index aside: %w", err)
		}
		hadOld = true
	}
	if err := os.Rename(tmp, final); err != nil {
		if hadOld {
			os.Rename(old, final)
		}
		return fmt.Errorf("publish index: %w", err)
	}
	if hadOld {
		os.RemoveAll(old)
	}
	return nil
}

func writeFile(path string, fill func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		_, err := f.Write(buf.Bytes())
		return err
	})
}

// Load reads root/<modelKey> fully and validates it. A missing index wraps
// ErrConfiguration.
func Load(root, modelKey string) (*Index, error) {
	dir := Dir(root, modelKey)

	var stats Stats
	if err := readJSON(filepath.Join(dir, StatsFile), &stats); err != nil {
		return nil, err
	}
	if stats.ModelKey != "" && stats.ModelKey != modelKey {
		return nil, fmt.Errorf("%w: index at %s was built for model %q", model.ErrConfiguration, dir, stats.ModelKey)
	}

	f, err := os.Open(filepath.Join(dir, EmbeddingsFile))
	if err != nil {
		return nil, wrapMissing(err)
	}
	var vectors [][]float32
	var dim int
	fi, err := f.Stat()
	if err == nil {
		vectors, dim, err = readNPY(f, fi.Size())
	}
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrConfiguration, EmbeddingsFile, err)
	}
	if len(vectors) > 0 && dim != stats.Dimension {
		return nil, fmt.Errorf("%w: embeddings have dimension %d, stats say %d", model.ErrConfiguration, dim, stats.Dimension)
	}

	var candidates []string
	if err := readJSON(filepath.Join(dir, CandidatesFile), &candidates); err != nil {
		return nil, err
	}
	var meta []model.GameRecord
	if err := readJSON(filepath.Join(dir, MetaFile), &meta); err != nil {
		return nil, err
	}

	idx := &Index{Vectors: vectors, Candidates: candidates, Meta: meta, Stats: stats}
	if idx.Vectors == nil {
		idx.Vectors = [][]float32{}
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapMissing(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", model.ErrConfiguration, filepath.Base(path), err)
	}
	return nil
}

func wrapMissing(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}
	return err
}
