package llm

import (
	"context"
	"time"

	"postcraft/pkg/retry"
)

const DefaultTimeout = 60 * time.Second

// Policy is applied around every backend call: an explicit deadline and one
// retry with backoff for transient failures.
type Policy struct {
	Timeout time.Duration
	Retry   retry.Config
}

func DefaultPolicy() Policy {
	return Policy{Timeout: DefaultTimeout, Retry: retry.DefaultConfig()}
}

type policyText struct {
	next   TextClient
	policy Policy
}

type policyImage struct {
	next   ImageClient
	policy Policy
}

func WithTextPolicy(client TextClient, policy Policy) TextClient {
	return &policyText{next: client, policy: policy}
}

func WithImagePolicy(client ImageClient, policy Policy) ImageClient {
	return &policyImage{next: client, policy: policy}
}

func (p *policyText) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return retry.Value(ctx, p.policy.Retry, func(ctx context.Context) (string, error) {
		callCtx, cancel := p.policy.deadline(ctx)
		defer cancel()
		return p.next.Complete(callCtx, prompt, temperature)
	})
}

func (p *policyImage) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return retry.Value(ctx, p.policy.Retry, func(ctx context.Context) ([]byte, error) {
		callCtx, cancel := p.policy.deadline(ctx)
		defer cancel()
		return p.next.Generate(callCtx, prompt)
	})
}

func (p Policy) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}
