// Package llmtest provides scripted text and image backends for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Rule answers prompts containing Match. Rules are checked in order.
type Rule struct {
	Match string
	Reply string
	Err   error
}

// TextClient is a concurrency-safe scripted llm.TextClient.
type TextClient struct {
	mu       sync.Mutex
	rules    []Rule
	fallback string
	prompts  []string
}

func NewTextClient(fallback string, rules ...Rule) *TextClient {
	return &TextClient{rules: rules, fallback: fallback}
}

func (c *TextClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.prompts = append(c.prompts, prompt)

	for _, rule := range c.rules {
		if strings.Contains(prompt, rule.Match) {
			return rule.Reply, rule.Err
		}
	}
	return c.fallback, nil
}

// Prompts returns every prompt received so far.
func (c *TextClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" when none was sent.
func (c *TextClient) LastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

func (c *TextClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

var ErrImageBackend = errors.New("image backend unavailable")

// ImageClient returns Data, or Err when set.
type ImageClient struct {
	mu    sync.Mutex
	Data  []byte
	Err   error
	calls int
}

func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Data, nil
}

func (c *ImageClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
