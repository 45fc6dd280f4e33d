package imagen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"postcraft/internal/llm"
	"postcraft/internal/llm/gemini"
)

const backendName = "imagen"

var _ llm.ImageClient = (*Client)(nil)

type Client struct {
	client      *genai.Client
	model       string
	aspectRatio string
}

type Options struct {
	Project     string
	Location    string
	Model       string
	AspectRatio string
	HTTPClient  *http.Client
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.Project == "" || opts.Location == "" {
		return nil, errors.New("imagen requires project and location")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:    opts.Project,
		Location:   opts.Location,
		Backend:    genai.BackendVertexAI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create imagen client: %w", err)
	}

	return &Client{
		client:      client,
		model:       opts.Model,
		aspectRatio: opts.AspectRatio,
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    c.aspectRatio,
	}

	resp, err := c.client.Models.GenerateImages(ctx, c.model, prompt, config)
	if err != nil {
		return nil, gemini.Classify(backendName, fmt.Errorf("generate image: %w", err))
	}

	return imageBytes(resp)
}

func imageBytes(resp *genai.GenerateImagesResponse) ([]byte, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, llm.NewBackendError(backendName, llm.Permanent, errors.New("no image returned"))
	}

	data := resp.GeneratedImages[0].Image.ImageBytes
	if len(data) == 0 {
		return nil, llm.NewBackendError(backendName, llm.Permanent, errors.New("empty image"))
	}

	return data, nil
}
