package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"postcraft/internal/app/model"
	"postcraft/internal/content"
	"postcraft/internal/hashtag"
	"postcraft/internal/imagegen"
	"postcraft/internal/imageprompt"
)

const defaultParallelism = 2

const (
	StageValidate = "validate"
	StageContent  = "content"
	StageImage    = "image"
	StageHashtags = "hashtags"
	StageAssemble = "assemble"
)

// PipelineError reports the stage that stopped a run.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

type Pipeline struct {
	service  *Service
	content  *content.Generator
	prompts  *imageprompt.Builder
	images   *imagegen.Generator
	hashtags *hashtag.Generator
	now      func() time.Time
}

func NewPipeline(service *Service) *Pipeline {
	cfg := service.Config()
	return &Pipeline{
		service:  service,
		content:  content.NewGenerator(service.Text(), service.Prompts()),
		prompts:  imageprompt.NewBuilder(service.Text(), service.Prompts()),
		images:   imagegen.NewGenerator(service.Image(), imagegen.Options{RequireGenerated: cfg.Image.RequireGenerated}),
		hashtags: hashtag.NewGenerator(service.Text(), service.Prompts()),
		now:      time.Now,
	}
}

// Run produces a complete post for req. Only validation, content failures
// and cancellation stop a run; image and hashtag problems degrade to
// placeholders and defaults. The result is saved when a store is configured.
func (pipeline *Pipeline) Run(ctx context.Context, req model.Request) (*model.Result, error) {
	if req.Tone == "" {
		req.Tone = model.DefaultTone
	}
	if err := req.Validate(); err != nil {
		return nil, &PipelineError{Stage: StageValidate, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &PipelineError{Stage: StageContent, Err: err}
	}
	slog.Info("Generating content...", "platform", req.Platform, "niche", req.Niche)
	started := pipeline.now()

	postContent, err := pipeline.content.Generate(ctx, req)
	if err != nil {
		return nil, &PipelineError{Stage: StageContent, Err: err}
	}
	slog.Info("Content ready", "topic", postContent.Topic, "chars", postContent.CharCount, "within_limit", postContent.WithinLimit)

	if err := ctx.Err(); err != nil {
		return nil, &PipelineError{Stage: StageImage, Err: err}
	}

	var (
		prompt   model.ImagePrompt
		artifact model.ImageArtifact
		tags     []model.Hashtag
		strategy model.HashtagStrategy
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(defaultParallelism)

	group.Go(func() error {
		var err error
		prompt, artifact, err = pipeline.renderImage(groupCtx, postContent)
		if err != nil {
			return &PipelineError{Stage: StageImage, Err: err}
		}
		return nil
	})
	group.Go(func() error {
		if err := groupCtx.Err(); err != nil {
			return &PipelineError{Stage: StageHashtags, Err: err}
		}
		slog.Info("Generating hashtags...")
		tags, strategy = pipeline.hashtags.GenerateWithStrategy(groupCtx, postContent, req.Platform)
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &PipelineError{Stage: StageAssemble, Err: err}
	}

	result := &model.Result{
		ID:          uuid.NewString(),
		Request:     req,
		Content:     postContent,
		ImagePrompt: prompt,
		Image:       artifact,
		Hashtags:    tags,
		Strategy:    strategy,
		CreatedAt:   pipeline.now(),
	}

	if store := pipeline.service.Store(); store != nil {
		if _, err := store.Save(ctx, result); err != nil {
			slog.Warn("Failed to save post", "id", result.ID, "error", err)
		}
	}

	slog.Info("Post generated",
		"id", result.ID,
		"image", result.Image.Source,
		"hashtags", len(result.Hashtags),
		"elapsed", pipeline.now().Sub(started).Round(time.Millisecond),
	)
	return result, nil
}

func (pipeline *Pipeline) renderImage(ctx context.Context, postContent model.Content) (model.ImagePrompt, model.ImageArtifact, error) {
	if err := ctx.Err(); err != nil {
		return "", model.ImageArtifact{}, err
	}

	slog.Info("Building image prompt...")
	prompt, err := pipeline.prompts.Build(ctx, postContent)
	if err != nil {
		if ctx.Err() != nil {
			return "", model.ImageArtifact{}, ctx.Err()
		}
		slog.Warn("Content analysis failed, using placeholder image", "error", err)
		return "", imagegen.Placeholder(model.ImagePrompt(postContent.Topic), "content analysis failed: "+err.Error()), nil
	}
	slog.Debug("Image prompt compiled", "prompt", prompt)

	if err := ctx.Err(); err != nil {
		return prompt, model.ImageArtifact{}, err
	}

	slog.Info("Rendering image...", "backend", pipeline.service.ImageEnabled())
	artifact, err := pipeline.images.Render(ctx, prompt, pipeline.service.ImageEnabled())
	if err != nil {
		return prompt, model.ImageArtifact{}, err
	}
	return prompt, artifact, nil
}
