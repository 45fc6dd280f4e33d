package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"postcraft/pkg/retry"
)

func fastPolicy() Policy {
	return Policy{
		Timeout: time.Second,
		Retry:   retry.Config{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
	}
}

func TestTextPolicyRetriesTransientOnce(t *testing.T) {
	calls := 0
	client := TextClientFunc(func(ctx context.Context, prompt string, temperature float64) (string, error) {
		calls++
		return "", NewBackendError("stub", Transient, errors.New("overloaded"))
	})

	_, err := WithTextPolicy(client, fastPolicy()).Complete(context.Background(), "p", 0.5)
	if !IsTransient(err) {
		t.Fatalf("Complete() error = %v, want transient", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestTextPolicyDoesNotRetryPermanent(t *testing.T) {
	calls := 0
	client := TextClientFunc(func(ctx context.Context, prompt string, temperature float64) (string, error) {
		calls++
		return "", NewBackendError("stub", Permanent, errors.New("bad key"))
	})

	_, _ = WithTextPolicy(client, fastPolicy()).Complete(context.Background(), "p", 0.5)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTextPolicySetsDeadline(t *testing.T) {
	client := TextClientFunc(func(ctx context.Context, prompt string, temperature float64) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected call context to carry a deadline")
		}
		return "ok", nil
	})

	got, err := WithTextPolicy(client, fastPolicy()).Complete(context.Background(), "p", 0.5)
	if err != nil || got != "ok" {
		t.Fatalf("Complete() = %q, %v", got, err)
	}
}

type imageFunc func(ctx context.Context, prompt string) ([]byte, error)

func (f imageFunc) Generate(ctx context.Context, prompt string) ([]byte, error) { return f(ctx, prompt) }

func TestImagePolicyRetriesTransient(t *testing.T) {
	calls := 0
	client := imageFunc(func(ctx context.Context, prompt string) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, NewBackendError("stub", Transient, context.DeadlineExceeded)
		}
		return []byte("png"), nil
	})

	data, err := WithImagePolicy(client, fastPolicy()).Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if string(data) != "png" || calls != 2 {
		t.Errorf("Generate() = %q after %d calls", data, calls)
	}
}
