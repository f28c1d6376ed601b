package exam

import (
	"context"

	"github.com/mind-engage/pharmexam/internal/grading"
)

type Store interface {
	NewAttempt(ctx context.Context, source string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	// SaveResponses merges resp into the attempt; an empty label clears a selection.
	// Fails with ErrAttemptSubmitted once the attempt is submitted.
	SaveResponses(ctx context.Context, id string, resp grading.Responses) (Attempt, error)
	// MarkSubmitted freezes the responses. Calling it again is a no-op.
	MarkSubmitted(ctx context.Context, id string) (Attempt, error)
}
