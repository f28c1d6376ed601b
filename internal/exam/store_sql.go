package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/pharmexam/internal/grading"
)

// SQLStore keeps attempts in the attempts table; queries use $n placeholders,
// which both sqlite and postgres accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) NewAttempt(ctx context.Context, source string) (Attempt, error) {
	a := Attempt{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    StatusInProgress,
		Responses: grading.Responses{},
		StartedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,source,status,responses_json,started_at)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.Source, string(a.Status), "{}", a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	return getAttempt(ctx, s.db, id)
}

func getAttempt(ctx context.Context, q queryRower, id string) (Attempt, error) {
	row := q.QueryRowContext(ctx, `SELECT id,source,status,responses_json,started_at,submitted_at FROM attempts WHERE id=$1`, id)
	var (
		a         Attempt
		status    string
		rjson     string
		submitted sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Source, &status, &rjson, &a.StartedAt, &submitted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	a.Status = Status(status)
	a.SubmittedAt = submitted.Int64
	if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil {
		return Attempt{}, fmt.Errorf("attempt %s: decode responses: %w", a.ID, err)
	}
	if a.Responses == nil {
		a.Responses = grading.Responses{}
	}
	return a, nil
}

func (s *SQLStore) SaveResponses(ctx context.Context, id string, resp grading.Responses) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer tx.Rollback()

	a, err := getAttempt(ctx, tx, id)
	if err != nil {
		return Attempt{}, err
	}
	if a.Submitted() {
		return Attempt{}, ErrAttemptSubmitted
	}
	a.Responses = mergeResponses(a.Responses, resp)
	buf, err := json.Marshal(a.Responses)
	if err != nil {
		return Attempt{}, err
	}
	res, err := tx.ExecContext(ctx, `UPDATE attempts SET responses_json=$1 WHERE id=$2 AND status=$3`,
		string(buf), id, string(StatusInProgress))
	if err != nil {
		return Attempt{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Attempt{}, ErrAttemptSubmitted
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) MarkSubmitted(ctx context.Context, id string) (Attempt, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE attempts SET status=$1, submitted_at=$2 WHERE id=$3 AND status=$4`,
		string(StatusSubmitted), time.Now().Unix(), id, string(StatusInProgress))
	if err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, id)
}
