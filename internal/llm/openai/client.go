package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"postcraft/internal/llm"
)

const backendName = "openai"

var _ llm.TextClient = (*Client)(nil)

type Client struct {
	client openai.Client
	model  string
}

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("openai model is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	// Retries are applied by callers so a transient failure is retried once overall.
	reqOpts = append(reqOpts, option.WithMaxRetries(0))

	return &Client{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", llm.ClassifyStatus(backendName, apiErr.StatusCode, fmt.Errorf("generate: %w", err))
		}
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
