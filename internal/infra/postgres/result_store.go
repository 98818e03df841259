package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mcq-quiz-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore archives submissions in Postgres. The per-question answer
// breakdown is stored as a JSONB snapshot.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Append(ctx context.Context, result domain.Result) (domain.Result, error) {
	result.ID = uuid.NewString()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.Result{}, fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO results (id, user_name, user_email, score, total, answers, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.ID, result.User.Name, result.User.Email, result.Score, result.Total, answers, result.CreatedAt)
	if err != nil {
		return domain.Result{}, fmt.Errorf("append result: %w", err)
	}
	return result, nil
}

func (s *ResultStore) List(ctx context.Context) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_name, user_email, score, total, answers, created_at FROM results ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

func (s *ResultStore) Get(ctx context.Context, id string) (domain.Result, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_name, user_email, score, total, answers, created_at FROM results WHERE id=$1`, id)
	r, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return r, err
}

func (s *ResultStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM results WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResultNotFound
	}
	return nil
}

func scanResult(row pgx.Row) (domain.Result, error) {
	var (
		r   domain.Result
		raw []byte
	)
	if err := row.Scan(&r.ID, &r.User.Name, &r.User.Email, &r.Score, &r.Total, &raw, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Result{}, err
		}
		return domain.Result{}, fmt.Errorf("scan result: %w", err)
	}
	if err := json.Unmarshal(raw, &r.Answers); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return r, nil
}
