package exam

import (
	"errors"

	"github.com/mind-engage/pharmexam/internal/grading"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

var (
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrNotSubmitted     = errors.New("attempt not submitted")
	ErrInvalidResponse  = errors.New("invalid response")
	ErrSourceMismatch   = errors.New("attempt belongs to another question set")
)

// Attempt is one pass through a question set. It carries the selections made
// so far and never a score: reports are derived from Responses on demand.
type Attempt struct {
	ID          string            `json:"id"`
	Source      string            `json:"source"`
	Status      Status            `json:"status"`
	Responses   grading.Responses `json:"responses"`
	StartedAt   int64             `json:"started_at"`
	SubmittedAt int64             `json:"submitted_at,omitempty"`
}

func (a Attempt) Submitted() bool { return a.Status == StatusSubmitted }
