package memory

import (
	"context"
	"sync"

	"mcq-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// QuestionStore is an in-memory app.QuestionRepository. Questions are kept in
// a slice so List preserves creation order.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{}
}

func (s *QuestionStore) List(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = cloneQuestion(q)
	}
	return out, nil
}

func (s *QuestionStore) Get(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.questions {
		if q.ID == id {
			return cloneQuestion(q), nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (s *QuestionStore) Create(_ context.Context, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question.ID = uuid.NewString()
	s.questions = append(s.questions, cloneQuestion(question))
	return question, nil
}

func (s *QuestionStore) Update(_ context.Context, id string, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.questions {
		if q.ID == id {
			question.ID = id
			s.questions[i] = cloneQuestion(question)
			return question, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (s *QuestionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.questions {
		if q.ID == id {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

// cloneQuestion copies the options slice so callers cannot alias store state.
func cloneQuestion(q domain.Question) domain.Question {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	q.Options = options
	return q
}
