package app

import (
	"postcraft/internal/llm"
	"postcraft/internal/storage"
	"postcraft/pkg/config"
	"postcraft/pkg/prompts"
)

type Service struct {
	cfg     *config.Config
	text    llm.TextClient
	image   llm.ImageClient
	store   *storage.PostStore
	prompts *prompts.Prompts
}

type ServiceOptions struct {
	Config  *config.Config
	Text    llm.TextClient
	Image   llm.ImageClient
	Store   *storage.PostStore
	Prompts *prompts.Prompts
}

func NewService(opts ServiceOptions) *Service {
	p := opts.Prompts
	if p == nil {
		p = prompts.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Service{
		cfg:     cfg,
		text:    opts.Text,
		image:   opts.Image,
		store:   opts.Store,
		prompts: p,
	}
}

func (s *Service) Config() *config.Config { return s.cfg }
func (s *Service) Text() llm.TextClient { return s.text }
func (s *Service) Image() llm.ImageClient { return s.image }
func (s *Service) Store() *storage.PostStore { return s.store }
func (s *Service) Prompts() *prompts.Prompts { return s.prompts }

// ImageEnabled reports whether renders should call the image backend.
func (s *Service) ImageEnabled() bool {
	return s.cfg.Image.Enabled && s.image != nil
}
