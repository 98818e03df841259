package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mcq-quiz-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore persists the question bank in Postgres. Options are stored as
// JSONB; the position column fixes List order to creation order.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, prompt, options, correct_option, timer_seconds FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionStore) Get(ctx context.Context, id string) (domain.Question, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, prompt, options, correct_option, timer_seconds FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionStore) Create(ctx context.Context, question domain.Question) (domain.Question, error) {
	question.ID = uuid.NewString()
	options, err := json.Marshal(question.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO questions (id, prompt, options, correct_option, timer_seconds) VALUES ($1, $2, $3, $4, $5)`,
		question.ID, question.Prompt, options, question.CorrectOption, question.TimerSeconds)
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

func (s *QuestionStore) Update(ctx context.Context, id string, question domain.Question) (domain.Question, error) {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE questions SET prompt=$2, options=$3, correct_option=$4, timer_seconds=$5 WHERE id=$1`,
		id, question.Prompt, options, question.CorrectOption, question.TimerSeconds)
	if err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	question.ID = id
	return question, nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q   domain.Question
		raw []byte
	)
	if err := row.Scan(&q.ID, &q.Prompt, &raw, &q.CorrectOption, &q.TimerSeconds); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Question{}, err
		}
		return domain.Question{}, fmt.Errorf("scan question: %w", err)
	}
	if err := json.Unmarshal(raw, &q.Options); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return q, nil
}
