package providers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyStatusCode(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorKind
	}{
		{429, KindRateLimit},
		{401, KindAuth},
		{403, KindAuth},
		{402, KindBilling},
		{400, KindInvalidRequest},
		{404, KindModelUnavailable},
		{500, KindServerError},
		{503, KindServerError},
		{418, KindUnknown},
	}

	for _, tc := range cases {
		err := NewProviderError("claude", "m", errors.New("boom")).WithStatus(tc.status)
		if err.Kind != tc.want {
			t.Errorf("status %d: kind = %s, want %s", tc.status, err.Kind, tc.want)
		}
	}
}

func TestClassifyErrorCode(t *testing.T) {
	err := NewProviderError("claude", "m", errors.New("boom")).WithCode("rate_limit_error")
	if err.Kind != KindRateLimit {
		t.Errorf("kind = %s, want %s", err.Kind, KindRateLimit)
	}

	// Unknown codes keep the prior classification.
	err = NewProviderError("claude", "m", errors.New("boom")).WithStatus(500).WithCode("mystery")
	if err.Kind != KindServerError {
		t.Errorf("kind = %s, want %s", err.Kind, KindServerError)
	}
}

func TestIsRateLimit(t *testing.T) {
	rateLimited := NewProviderError("claude", "m", errors.New("boom")).WithStatus(429)
	if !IsRateLimit(rateLimited) {
		t.Error("expected 429 error to be a rate limit")
	}

	wrapped := fmt.Errorf("chat failed: %w", rateLimited)
	if !IsRateLimit(wrapped) {
		t.Error("expected wrapped 429 error to be a rate limit")
	}

	generic := NewProviderError("claude", "m", errors.New("boom")).WithStatus(400)
	if IsRateLimit(generic) {
		t.Error("expected 400 error not to be a rate limit")
	}
}

func TestClassifyRawError(t *testing.T) {
	if got := ClassifyError(errors.New("context deadline exceeded")); got != KindTimeout {
		t.Errorf("kind = %s, want %s", got, KindTimeout)
	}
	if got := ClassifyError(errors.New("429 too many requests")); got != KindRateLimit {
		t.Errorf("kind = %s, want %s", got, KindRateLimit)
	}
	if got := ClassifyError(errors.New("something odd")); got != KindUnknown {
		t.Errorf("kind = %s, want %s", got, KindUnknown)
	}
}

func TestProviderErrorString(t *testing.T) {
	err := NewProviderError("claude", "claude-sonnet-4-20250514", errors.New("boom")).
		WithStatus(429).
		WithMessage("slow down").
		WithCode("rate_limit_error")

	msg := err.Error()
	for _, want := range []string{"[rate_limit]", "claude", "model=claude-sonnet-4-20250514", "status=429", "slow down"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewProviderError("openai", "gpt-4o", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	got, ok := GetProviderError(fmt.Errorf("outer: %w", err))
	if !ok || got.Provider != "openai" {
		t.Fatalf("GetProviderError = %+v, %v", got, ok)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewProviderError("claude", "m", errors.New("x")).WithStatus(503)) {
		t.Error("expected 503 to be retryable")
	}
	if IsRetryable(NewProviderError("claude", "m", errors.New("x")).WithStatus(401)) {
		t.Error("expected 401 not to be retryable")
	}
}
