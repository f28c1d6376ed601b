package exam

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/pharmexam/internal/grading"
)

type memoryStore struct {
	mu       sync.RWMutex
	attempts map[string]Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{attempts: map[string]Attempt{}}
}

func (m *memoryStore) NewAttempt(_ context.Context, source string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := Attempt{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    StatusInProgress,
		Responses: grading.Responses{},
		StartedAt: time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return copyAttempt(a), nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return copyAttempt(a), nil
}

func (m *memoryStore) SaveResponses(_ context.Context, id string, resp grading.Responses) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.Submitted() {
		return Attempt{}, ErrAttemptSubmitted
	}
	a.Responses = mergeResponses(a.Responses, resp)
	m.attempts[id] = a
	return copyAttempt(a), nil
}

func (m *memoryStore) MarkSubmitted(_ context.Context, id string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if !a.Submitted() {
		a.Status = StatusSubmitted
		a.SubmittedAt = time.Now().Unix()
		m.attempts[id] = a
	}
	return copyAttempt(a), nil
}

// copyAttempt detaches the responses map from the stored value.
func copyAttempt(a Attempt) Attempt {
	a.Responses = a.Responses.Clone()
	return a
}

func mergeResponses(dst, src grading.Responses) grading.Responses {
	out := dst.Clone()
	for k, v := range src {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
