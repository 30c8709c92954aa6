package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

const claudeMaxTokens = 1500

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

var _ StructuredClient = (*ClaudeClient)(nil)

func NewClaudeClient(apiKey string, model string, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, c.request(prompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Content {
		if part.Text != nil {
			return *part.Text, nil
		}
	}
	return "", fmt.Errorf("no response content")
}

// GenerateJSON forces a single tool call whose input schema is the requested
// shape and returns the tool input.
func (c *ClaudeClient) GenerateJSON(ctx context.Context, prompt, schemaName string, schema json.RawMessage) (string, error) {
	req := c.request(prompt)
	req.Tools = []anthropic.ToolDefinition{{
		Name:        schemaName,
		Description: "Record the answer as " + schemaName + ".",
		InputSchema: schema,
	}}
	req.ToolChoice = &anthropic.ToolChoice{Type: "tool", Name: schemaName}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", err
	}
	for _, part := range resp.Content {
		if part.Type == anthropic.MessagesContentTypeToolUse && part.MessageContentToolUse != nil {
			return string(part.MessageContentToolUse.Input), nil
		}
	}
	return "", fmt.Errorf("no %s tool call in response", schemaName)
}

func (c *ClaudeClient) request(prompt string) anthropic.MessagesRequest {
	return anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens: claudeMaxTokens,
	}
}
