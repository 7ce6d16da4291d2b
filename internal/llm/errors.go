package llm

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for model invocation. Callers classify with errors.Is.
var (
	// ErrUnknownModelAlias indicates an alias outside the registered set. This
	// is a programming error, not a runtime condition.
	ErrUnknownModelAlias = errors.New("unknown model alias")

	// ErrModelUnavailable indicates the backend rejected or failed the call.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelTimeout indicates the call exceeded its deadline.
	ErrModelTimeout = errors.New("model invocation timed out")

	// ErrEmbeddingFailure indicates the embedding provider failed. Callers
	// treat this as a degradation, never as a generation blocker.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrEmptyResponse indicates the model returned no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// classifyInvokeError maps a transport error onto the invocation taxonomy,
// keeping the original cause in the message.
func classifyInvokeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, ErrModelTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrModelUnavailable, err)
}
