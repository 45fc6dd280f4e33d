package llm

import "context"

const (
	DefaultTemperature = 0.7
	// AnalyticalTemperature is used for structured (JSON) replies.
	AnalyticalTemperature = 0.2
)

type TextClient interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

type ImageClient interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// TextClientFunc adapts a plain function to TextClient.
type TextClientFunc func(ctx context.Context, prompt string, temperature float64) (string, error)

func (f TextClientFunc) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return f(ctx, prompt, temperature)
}
