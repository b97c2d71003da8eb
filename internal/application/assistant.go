package application

import "context"

// Assistant answers a single utterance. Failures come back as a
// *domain.AssistantError so the loop can pick a spoken message per kind.
// Implementations must not retry: a failed call surfaces immediately.
type Assistant interface {
	Ask(ctx context.Context, utterance string) (string, error)
}
