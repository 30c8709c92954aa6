package llm

import (
	"context"
	"encoding/json"
)

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient embeds a batch of texts. The result is aligned with the input.
type EmbedderClient interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// StructuredClient is implemented by providers that can constrain the response
// to a JSON schema.
type StructuredClient interface {
	GenerateJSON(ctx context.Context, prompt, schemaName string, schema json.RawMessage) (string, error)
}
