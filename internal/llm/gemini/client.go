package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"postcraft/internal/llm"
)

const backendName = "gemini"

var _ llm.TextClient = (*Client)(nil)

type Client struct {
	client *genai.Client
	model  string
}

type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: opts.Model}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", classify(fmt.Errorf("generate: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", llm.NewBackendError(backendName, llm.Transient, errors.New("no response"))
	}

	text := resp.Text()
	if text == "" {
		return "", llm.NewBackendError(backendName, llm.Transient, errors.New("empty response"))
	}

	return text, nil
}

func classify(err error) error {
	return Classify(backendName, err)
}

// Classify maps genai API errors onto the backend error taxonomy. It is shared
// with the imagen client, which talks to the same SDK.
func Classify(backend string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.ClassifyStatus(backend, apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return llm.ClassifyStatus(backend, apiErrPtr.Code, err)
	}
	return llm.Classify(backend, err)
}
