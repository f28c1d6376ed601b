package exam

import (
	"context"
	"fmt"

	"github.com/mind-engage/pharmexam/internal/grading"
	"github.com/mind-engage/pharmexam/internal/logger"
	"github.com/mind-engage/pharmexam/internal/questionset"
)

// Service runs the two phases of an attempt: responses are collected with
// Answer, and grading happens only in Submit.
type Service struct {
	store  Store
	loader questionset.Loader
	log    *logger.Logger
}

func NewService(store Store, loader questionset.Loader, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, loader: loader, log: log.With("service", "ExamService")}
}

// QuestionSet loads a source and refuses empty ones, so callers never show an empty quiz.
func (s *Service) QuestionSet(ctx context.Context, source string) (questionset.Set, error) {
	set, err := s.loader.Load(ctx, source)
	if err != nil {
		return questionset.Set{}, err
	}
	if set.Empty() {
		return questionset.Set{}, grading.ErrEmptyQuestionSet
	}
	return set, nil
}

// Start opens a new attempt on source.
func (s *Service) Start(ctx context.Context, source string) (Attempt, questionset.Set, error) {
	set, err := s.QuestionSet(ctx, source)
	if err != nil {
		return Attempt{}, questionset.Set{}, err
	}
	a, err := s.store.NewAttempt(ctx, source)
	if err != nil {
		return Attempt{}, questionset.Set{}, err
	}
	s.log.Info("attempt started", "attempt_id", a.ID, "source", source, "questions", set.Len())
	return a, set, nil
}

// Resume reopens an in-progress attempt on source. It fails with
// ErrAttemptSubmitted or ErrSourceMismatch when the attempt cannot take new answers for source.
func (s *Service) Resume(ctx context.Context, id, source string) (Attempt, questionset.Set, error) {
	a, err := s.store.GetAttempt(ctx, id)
	if err != nil {
		return Attempt{}, questionset.Set{}, err
	}
	if a.Submitted() {
		return Attempt{}, questionset.Set{}, ErrAttemptSubmitted
	}
	if a.Source != source {
		return Attempt{}, questionset.Set{}, ErrSourceMismatch
	}
	set, err := s.QuestionSet(ctx, source)
	if err != nil {
		return Attempt{}, questionset.Set{}, err
	}
	return a, set, nil
}

func (s *Service) Get(ctx context.Context, id string) (Attempt, error) {
	return s.store.GetAttempt(ctx, id)
}

// Answer records selections during the collection phase. Indices must fall
// inside the question set and labels must be A..E or empty (clear).
func (s *Service) Answer(ctx context.Context, id string, resp grading.Responses) (Attempt, error) {
	a, err := s.store.GetAttempt(ctx, id)
	if err != nil {
		return Attempt{}, err
	}
	if a.Submitted() {
		return Attempt{}, ErrAttemptSubmitted
	}
	set, err := s.QuestionSet(ctx, a.Source)
	if err != nil {
		return Attempt{}, err
	}
	for i, l := range resp {
		if i < 0 || i >= set.Len() {
			return Attempt{}, fmt.Errorf("%w: question %d out of range", ErrInvalidResponse, i)
		}
		if l != "" && !l.Valid() {
			return Attempt{}, fmt.Errorf("%w: label %q for question %d", ErrInvalidResponse, l, i)
		}
	}
	return s.store.SaveResponses(ctx, id, resp)
}

// Submit freezes the attempt and grades the frozen responses. Submitting an
// already submitted attempt grades the same snapshot again.
func (s *Service) Submit(ctx context.Context, id string) (grading.Report, error) {
	a, err := s.store.GetAttempt(ctx, id)
	if err != nil {
		return grading.Report{}, err
	}
	set, err := s.QuestionSet(ctx, a.Source)
	if err != nil {
		return grading.Report{}, err
	}
	first := !a.Submitted()
	a, err = s.store.MarkSubmitted(ctx, id)
	if err != nil {
		return grading.Report{}, err
	}
	rep, err := grading.Grade(set, a.Responses)
	if err != nil {
		return grading.Report{}, err
	}
	if first {
		s.log.Info("attempt submitted", "attempt_id", id, "source", a.Source,
			"correct", rep.CorrectCount, "total", rep.TotalCount, "verdict", rep.Verdict)
	}
	return rep, nil
}

// Result returns the report of a submitted attempt.
func (s *Service) Result(ctx context.Context, id string) (grading.Report, error) {
	a, err := s.store.GetAttempt(ctx, id)
	if err != nil {
		return grading.Report{}, err
	}
	if !a.Submitted() {
		return grading.Report{}, ErrNotSubmitted
	}
	set, err := s.QuestionSet(ctx, a.Source)
	if err != nil {
		return grading.Report{}, err
	}
	return grading.Grade(set, a.Responses)
}
