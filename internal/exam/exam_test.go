package exam

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/pharmexam/internal/db"
	"github.com/mind-engage/pharmexam/internal/grading"
	"github.com/mind-engage/pharmexam/internal/questionset"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return map[string]Store{
		"memory": NewInMemoryStore(),
		"sqlite": NewSQLStore(h),
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			a, err := st.NewAttempt(ctx, "q1.csv")
			require.NoError(t, err)
			assert.NotEmpty(t, a.ID)
			assert.Equal(t, StatusInProgress, a.Status)
			assert.Empty(t, a.Responses)

			a, err = st.SaveResponses(ctx, a.ID, grading.Responses{0: questionset.LabelA, 1: questionset.LabelB})
			require.NoError(t, err)
			a, err = st.SaveResponses(ctx, a.ID, grading.Responses{1: questionset.LabelC, 2: questionset.LabelD, 0: ""})
			require.NoError(t, err)
			assert.Equal(t, grading.Responses{1: questionset.LabelC, 2: questionset.LabelD}, a.Responses)

			got, err := st.GetAttempt(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, a.Responses, got.Responses)
			assert.Equal(t, "q1.csv", got.Source)

			sub, err := st.MarkSubmitted(ctx, a.ID)
			require.NoError(t, err)
			assert.True(t, sub.Submitted())
			assert.NotZero(t, sub.SubmittedAt)

			again, err := st.MarkSubmitted(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, sub.SubmittedAt, again.SubmittedAt)

			_, err = st.SaveResponses(ctx, a.ID, grading.Responses{0: questionset.LabelA})
			assert.ErrorIs(t, err, ErrAttemptSubmitted)

			got, err = st.GetAttempt(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, grading.Responses{1: questionset.LabelC, 2: questionset.LabelD}, got.Responses)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.GetAttempt(ctx, "nope")
			assert.ErrorIs(t, err, ErrAttemptNotFound)
			_, err = st.SaveResponses(ctx, "nope", grading.Responses{})
			assert.ErrorIs(t, err, ErrAttemptNotFound)
			_, err = st.MarkSubmitted(ctx, "nope")
			assert.ErrorIs(t, err, ErrAttemptNotFound)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()
	a, err := st.NewAttempt(ctx, "q1.csv")
	require.NoError(t, err)
	a.Responses[0] = questionset.LabelA

	got, err := st.GetAttempt(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Responses)
}

type staticLoader map[string]questionset.Set

func (l staticLoader) Load(_ context.Context, id string) (questionset.Set, error) {
	s, ok := l[id]
	if !ok {
		return questionset.Set{}, &questionset.LoadError{Source: id, Reason: "not an approved source", Err: questionset.ErrUnknownSource}
	}
	return s, nil
}

func tenQuestions() questionset.Set {
	recs := make([]questionset.Record, 10)
	for i := range recs {
		recs[i] = questionset.Record{Question: fmt.Sprintf("Q%d", i+1), Correct: questionset.LabelB}
		for j, l := range questionset.Labels {
			recs[i].Options[j] = questionset.Option{Label: l, Text: string(l)}
		}
	}
	return questionset.NewSet("q1.csv", recs)
}

func newService() *Service {
	return NewService(NewInMemoryStore(), staticLoader{
		"q1.csv":    tenQuestions(),
		"empty.csv": questionset.NewSet("empty.csv", nil),
	}, nil)
}

func TestServiceSubmitGrades(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	a, set, err := svc.Start(ctx, "q1.csv")
	require.NoError(t, err)
	assert.Equal(t, 10, set.Len())

	resp := grading.Responses{}
	for i := 0; i < 6; i++ {
		resp[i] = questionset.LabelB
	}
	resp[6] = questionset.LabelA
	_, err = svc.Answer(ctx, a.ID, resp)
	require.NoError(t, err)

	_, err = svc.Result(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotSubmitted)

	rep, err := svc.Submit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, rep.CorrectCount)
	assert.InDelta(t, 60.0, rep.Percentage, 1e-9)
	assert.Equal(t, grading.VerdictPassWithWarning, rep.Verdict)

	again, err := svc.Submit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, rep, again)

	res, err := svc.Result(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, rep, res)

	_, err = svc.Answer(ctx, a.ID, grading.Responses{7: questionset.LabelB})
	assert.ErrorIs(t, err, ErrAttemptSubmitted)
}

func TestServiceAnswerValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _, err := svc.Start(ctx, "q1.csv")
	require.NoError(t, err)

	_, err = svc.Answer(ctx, a.ID, grading.Responses{10: questionset.LabelA})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	_, err = svc.Answer(ctx, a.ID, grading.Responses{0: "F"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	_, err = svc.Answer(ctx, a.ID, grading.Responses{0: ""})
	assert.NoError(t, err)
}

func TestServiceStartFailures(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, _, err := svc.Start(ctx, "empty.csv")
	assert.ErrorIs(t, err, grading.ErrEmptyQuestionSet)

	_, _, err = svc.Start(ctx, "q9.csv")
	assert.ErrorIs(t, err, questionset.ErrUnknownSource)

	_, err = svc.Submit(ctx, "missing")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestSQLStoreRejectsCorruptResponses(t *testing.T) {
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	st := NewSQLStore(h)

	a, err := st.NewAttempt(ctx, "q1.csv")
	require.NoError(t, err)
	_, err = h.ExecContext(ctx, `UPDATE attempts SET responses_json='{"0":' WHERE id=$1`, a.ID)
	require.NoError(t, err)

	_, err = st.GetAttempt(ctx, a.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode responses")
	_, err = st.SaveResponses(ctx, a.ID, grading.Responses{0: questionset.LabelA})
	assert.Error(t, err)

	// a literal null is an attempt with nothing answered yet
	_, err = h.ExecContext(ctx, `UPDATE attempts SET responses_json='null' WHERE id=$1`, a.ID)
	require.NoError(t, err)
	got, err := st.GetAttempt(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, grading.Responses{}, got.Responses)
}

func TestServiceResume(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _, err := svc.Start(ctx, "q1.csv")
	require.NoError(t, err)

	got, set, err := svc.Resume(ctx, a.ID, "q1.csv")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, 10, set.Len())

	_, _, err = svc.Resume(ctx, a.ID, "empty.csv")
	assert.ErrorIs(t, err, ErrSourceMismatch)

	_, err = svc.Submit(ctx, a.ID)
	require.NoError(t, err)
	_, _, err = svc.Resume(ctx, a.ID, "q1.csv")
	assert.ErrorIs(t, err, ErrAttemptSubmitted)

	_, _, err = svc.Resume(ctx, "missing", "q1.csv")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}
