package extraction

import (
	"context"
	"encoding/json"
	"sync"
)

// MockLLMClient replays Responses in order, repeating the last one, and
// records every prompt.
type MockLLMClient struct {
	Response  string
	Responses []string
	Err       error

	mu      sync.Mutex
	Prompts []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return m.Response, nil
	}
	i := len(m.Prompts) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// MockStructuredClient also records the schema names it was asked for.
type MockStructuredClient struct {
	MockLLMClient
	SchemaNames []string
	Schemas     []json.RawMessage
}

func (m *MockStructuredClient) GenerateJSON(ctx context.Context, prompt, schemaName string, schema json.RawMessage) (string, error) {
	m.mu.Lock()
	m.SchemaNames = append(m.SchemaNames, schemaName)
	m.Schemas = append(m.Schemas, schema)
	m.mu.Unlock()
	return m.Generate(ctx, prompt)
}
