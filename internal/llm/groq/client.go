package groq

import (
	"context"
	"errors"
	"fmt"

	"github.com/conneroisu/groq-go"

	"postcraft/internal/llm"
)

const backendName = "groq"

var _ llm.TextClient = (*Client)(nil)

type Client struct {
	client *groq.Client
	model  groq.ChatModel
}

// NewClient builds a groq client. An empty baseURL uses the public API.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	var (
		client *groq.Client
		err    error
	)
	if baseURL != "" {
		client, err = groq.NewClient(apiKey, groq.WithBaseURL(baseURL))
	} else {
		client, err = groq.NewClient(apiKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleUser, Content: prompt},
		},
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", llm.Classify(backendName, fmt.Errorf("generate: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", llm.NewBackendError(backendName, llm.Transient, errors.New("no response"))
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", llm.NewBackendError(backendName, llm.Transient, errors.New("empty response"))
	}

	return content, nil
}
