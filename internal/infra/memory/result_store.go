package memory

import (
	"context"
	"sync"
	"time"

	"mcq-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// ResultStore is an in-memory append-only app.ResultRepository.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Append assigns an id (and a timestamp if the caller left it zero) and
// archives the result.
func (s *ResultStore) Append(_ context.Context, result domain.Result) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.ID = uuid.NewString()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	s.results = append(s.results, cloneResult(result))
	return result, nil
}

// List returns results most-recent-first.
func (s *ResultStore) List(_ context.Context) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Result, 0, len(s.results))
	for i := len(s.results) - 1; i >= 0; i-- {
		out = append(out, cloneResult(s.results[i]))
	}
	return out, nil
}

func (s *ResultStore) Get(_ context.Context, id string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return cloneResult(r), nil
		}
	}
	return domain.Result{}, domain.ErrResultNotFound
}

func (s *ResultStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.results {
		if r.ID == id {
			s.results = append(s.results[:i], s.results[i+1:]...)
			return nil
		}
	}
	return domain.ErrResultNotFound
}

func cloneResult(r domain.Result) domain.Result {
	answers := make([]domain.AnswerRecord, len(r.Answers))
	copy(answers, r.Answers)
	r.Answers = answers
	return r
}
