package embed

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agenthands/copycheck/internal/config"
	"github.com/agenthands/copycheck/internal/llm"
)

// Model turns texts into fixed-dimension vectors.
type Model interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Spec describes the model behind a model key.
type Spec struct {
	Provider  string
	ModelName string
	Dimension int
}

const HashKey = "hash"

var registry = map[string]Spec{
	HashKey:        {Provider: "local", ModelName: "feature-hash", Dimension: hashDimension},
	"openai-small": {Provider: "openai", ModelName: "text-embedding-3-small", Dimension: 1536},
	"openai-large": {Provider: "openai", ModelName: "text-embedding-3-large", Dimension: 3072},
	"gemini":       {Provider: "gemini", ModelName: "text-embedding-004", Dimension: 768},
	"nomic":        {Provider: "ollama", ModelName: "nomic-embed-text", Dimension: 768},
}

func Lookup(key string) (Spec, bool) {
	s, ok := registry[key]
	return s, ok
}

// Keys lists the registered model keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Open builds the model for key. Remote providers reuse the LLM settings when
// the provider matches, otherwise they fall back to <PROVIDER>_API_KEY.
func Open(ctx context.Context, key string, cfg config.LLMConfig) (Model, error) {
	spec, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unknown embedding model key %q", key)
	}
	if spec.Provider == "local" {
		return NewHashModel(spec.Dimension), nil
	}

	clientCfg := config.LLMConfig{
		Provider:       spec.Provider,
		EmbeddingModel: spec.ModelName,
	}
	if strings.EqualFold(cfg.Provider, spec.Provider) {
		clientCfg.APIKey = cfg.APIKey
		clientCfg.BaseURL = cfg.BaseURL
	} else {
		clientCfg.APIKey = os.Getenv(strings.ToUpper(spec.Provider) + "_API_KEY")
	}

	_, embedder, err := llm.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("provider %s has no embeddings", spec.Provider)
	}
	return &remoteModel{name: spec.ModelName, dim: spec.Dimension, client: embedder}, nil
}

type remoteModel struct {
	name   string
	dim    int
	client llm.EmbedderClient
}

func (m *remoteModel) Name() string   { return m.name }
func (m *remoteModel) Dimension() int { return m.dim }

func (m *remoteModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := m.client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%s embed: %w", m.name, err)
	}
	for i, v := range vecs {
		if len(v) != m.dim {
			return nil, fmt.Errorf("%s returned %d dimensions for item %d, want %d", m.name, len(v), i, m.dim)
		}
	}
	return vecs, nil
}
