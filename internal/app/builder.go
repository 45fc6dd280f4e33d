package app

import (
	"context"
	"fmt"
	"log/slog"

	"postcraft/internal/llm"
	"postcraft/internal/llm/gemini"
	"postcraft/internal/llm/groq"
	"postcraft/internal/llm/imagen"
	"postcraft/internal/llm/openai"
	"postcraft/internal/storage"
	"postcraft/pkg/config"
	"postcraft/pkg/prompts"
	"postcraft/pkg/retry"
)

type BuildResult struct {
	Service *Service
	Mirror  *storage.GCSMirror
}

// Close releases the bucket client when a mirror is configured.
func (b *BuildResult) Close() error {
	if b.Mirror == nil {
		return nil
	}
	return b.Mirror.Close()
}

func BuildService(ctx context.Context, cfg *config.Config) (*BuildResult, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	policy := Policy(cfg)

	text, err := newTextClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var image llm.ImageClient
	if cfg.Image.Enabled {
		imageClient, err := imagen.NewClient(ctx, imagen.Options{
			Project:     cfg.Project,
			Location:    cfg.Location,
			Model:       cfg.Image.Model,
			AspectRatio: cfg.Image.AspectRatio,
		})
		if err != nil {
			return nil, err
		}
		image = llm.WithImagePolicy(imageClient, policy)
	}

	store := storage.NewPostStore(cfg.Storage.PostsDir, cfg.Storage.ImagesDir)
	if err := store.EnsureDirectories(); err != nil {
		return nil, err
	}

	var mirror *storage.GCSMirror
	if cfg.GCSBucket != "" {
		mirror, err = storage.NewGCSMirror(ctx, cfg.GCSBucket, cfg.Storage.GCSPrefix)
		if err != nil {
			return nil, err
		}
		for _, dir := range []string{cfg.Storage.PostsDir, cfg.Storage.ImagesDir} {
			if _, err := mirror.Pull(ctx, dir); err != nil {
				slog.Warn("Failed to restore from bucket", "dir", dir, "error", err)
			}
		}
		store.WithMirror(mirror)
	}

	if err := store.Load(); err != nil {
		return nil, err
	}

	slog.Debug("Service built",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"image_backend", cfg.Image.Enabled,
		"posts", store.Len(),
	)

	service := NewService(ServiceOptions{
		Config:  cfg,
		Text:    llm.WithTextPolicy(text, policy),
		Image:   image,
		Store:   store,
		Prompts: p,
	})

	return &BuildResult{Service: service, Mirror: mirror}, nil
}

// Policy derives the per-call timeout and retry budget from cfg.
func Policy(cfg *config.Config) llm.Policy {
	r := retry.DefaultConfig()
	r.MaxRetries = cfg.Backend.MaxRetries
	return llm.Policy{Timeout: cfg.Backend.Timeout, Retry: r}
}

func newTextClient(ctx context.Context, cfg *config.Config) (llm.TextClient, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Options{APIKey: cfg.APIKey, Model: cfg.LLM.Model, BaseURL: cfg.LLM.BaseURL})
	case config.ProviderGroq:
		return groq.NewClient(cfg.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Options{APIKey: cfg.APIKey, Model: cfg.LLM.Model, BaseURL: cfg.LLM.BaseURL})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
