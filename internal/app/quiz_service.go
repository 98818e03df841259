package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mcq-quiz-service/internal/domain"
)

// QuestionRepository abstracts the question bank (in-memory, Postgres, cached).
// List must return questions in stable creation order: submitted answer indices
// are positionally aligned to it.
type QuestionRepository interface {
	List(ctx context.Context) ([]domain.Question, error)
	Get(ctx context.Context, id string) (domain.Question, error)
	Create(ctx context.Context, question domain.Question) (domain.Question, error)
	Update(ctx context.Context, id string, question domain.Question) (domain.Question, error)
	Delete(ctx context.Context, id string) error
}

// SettingsRepository stores the singleton quiz configuration record.
// Get materializes the default record on first access.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.QuizSettings, error)
	Set(ctx context.Context, settings domain.QuizSettings) (domain.QuizSettings, error)
}

// ResultRepository is the append-only archive of submissions.
// List returns results most-recent-first.
type ResultRepository interface {
	Append(ctx context.Context, result domain.Result) (domain.Result, error)
	List(ctx context.Context) ([]domain.Result, error)
	Get(ctx context.Context, id string) (domain.Result, error)
	Delete(ctx context.Context, id string) error
}

// QuizService contains the quiz use cases: scoring, question CRUD, settings,
// and result administration.
type QuizService struct {
	questions QuestionRepository
	settings  SettingsRepository
	results   ResultRepository
	feed      *ResultFeed
	now       func() time.Time
}

func NewQuizService(questions QuestionRepository, settings SettingsRepository, results ResultRepository) *QuizService {
	return NewQuizServiceWithClock(questions, settings, results, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(questions QuestionRepository, settings SettingsRepository, results ResultRepository, now func() time.Time) *QuizService {
	return &QuizService{
		questions: questions,
		settings:  settings,
		results:   results,
		feed:      NewResultFeed(),
		now:       now,
	}
}

// Feed exposes the live stream of appended results for transport layers.
func (s *QuizService) Feed() *ResultFeed {
	return s.feed
}

// ActiveQuestions returns the current question set with correct answers stripped.
func (s *QuizService) ActiveQuestions(ctx context.Context) ([]domain.SanitizedQuestion, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	sanitized := make([]domain.SanitizedQuestion, 0, len(questions))
	for _, q := range questions {
		sanitized = append(sanitized, q.Sanitize())
	}
	return sanitized, nil
}

// SubmitQuiz scores a submission against the current question bank, persists
// the audit record, and returns the summary.
//
// Answer indices are zero-based and positionally aligned to the bank's stable
// iteration order. A missing entry defaults to index 0, indistinguishable from
// an active choice of the first option; an out-of-range entry is never correct
// and leaves the audit answer text empty.
func (s *QuizService) SubmitQuiz(ctx context.Context, user domain.Identity, answers []int) (domain.Summary, error) {
	if strings.TrimSpace(user.Name) == "" {
		return domain.Summary{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(user.Email) == "" {
		return domain.Summary{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if answers == nil {
		return domain.Summary{}, fmt.Errorf("%w: answers are required", domain.ErrValidation)
	}

	questions, err := s.questions.List(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return domain.Summary{}, domain.ErrNoQuestions
	}

	score := 0
	records := make([]domain.AnswerRecord, 0, len(questions))
	for i, q := range questions {
		submitted := 0
		if i < len(answers) {
			submitted = answers[i]
		}
		correctIdx := q.CorrectOption - 1
		correct := submitted == correctIdx
		if correct {
			score++
		}
		userAnswer := ""
		if submitted >= 0 && submitted < len(q.Options) {
			userAnswer = q.Options[submitted]
		}
		records = append(records, domain.AnswerRecord{
			Question:      q.Prompt,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.Options[correctIdx],
			Correct:       correct,
		})
	}

	result := domain.Result{
		User:      user,
		Score:     score,
		Total:     len(questions),
		Answers:   records,
		CreatedAt: s.now(),
	}
	saved, err := s.results.Append(ctx, result)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("save result: %w", err)
	}
	s.feed.Publish(saved)

	return domain.Summary{Score: score, Total: len(questions), Results: records}, nil
}

// ListQuestions returns the full bank including correct answers. Admin only;
// authorization is enforced at the transport boundary.
func (s *QuizService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.questions.List(ctx)
}

func (s *QuizService) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	return s.questions.Get(ctx, id)
}

func (s *QuizService) CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	normalized, err := validateQuestion(question)
	if err != nil {
		return domain.Question{}, err
	}
	return s.questions.Create(ctx, normalized)
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id string, question domain.Question) (domain.Question, error) {
	normalized, err := validateQuestion(question)
	if err != nil {
		return domain.Question{}, err
	}
	return s.questions.Update(ctx, id, normalized)
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id string) error {
	return s.questions.Delete(ctx, id)
}

// UpdateAllTimers sets the display timer on every stored question.
func (s *QuizService) UpdateAllTimers(ctx context.Context, timerSeconds int) error {
	if timerSeconds < 10 || timerSeconds > 180 {
		return fmt.Errorf("%w: timer must be between 10 and 180 seconds", domain.ErrValidation)
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	for _, q := range questions {
		q.TimerSeconds = timerSeconds
		if _, err := s.questions.Update(ctx, q.ID, q); err != nil {
			return fmt.Errorf("update question timer: %w", err)
		}
	}
	return nil
}

// Settings returns the singleton configuration, materializing the default on
// first access.
func (s *QuizService) Settings(ctx context.Context) (domain.QuizSettings, error) {
	return s.settings.Get(ctx)
}

func (s *QuizService) UpdateSettings(ctx context.Context, settings domain.QuizSettings) (domain.QuizSettings, error) {
	if settings.DurationMinutes < 5 || settings.DurationMinutes > 180 {
		return domain.QuizSettings{}, fmt.Errorf("%w: duration must be between 5 and 180 minutes", domain.ErrValidation)
	}
	return s.settings.Set(ctx, settings)
}

func (s *QuizService) ListResults(ctx context.Context) ([]domain.Result, error) {
	return s.results.List(ctx)
}

func (s *QuizService) GetResult(ctx context.Context, id string) (domain.Result, error) {
	return s.results.Get(ctx, id)
}

func (s *QuizService) DeleteResult(ctx context.Context, id string) error {
	return s.results.Delete(ctx, id)
}

// validateQuestion checks the admin-supplied question and fills defaults.
func validateQuestion(q domain.Question) (domain.Question, error) {
	if strings.TrimSpace(q.Prompt) == "" {
		return domain.Question{}, fmt.Errorf("%w: question text is required", domain.ErrValidation)
	}
	if len(q.Options) != domain.OptionCount {
		return domain.Question{}, fmt.Errorf("%w: must provide exactly %d options", domain.ErrValidation, domain.OptionCount)
	}
	if q.CorrectOption < 1 || q.CorrectOption > domain.OptionCount {
		return domain.Question{}, fmt.Errorf("%w: correct answer must be between 1 and %d", domain.ErrValidation, domain.OptionCount)
	}
	if q.TimerSeconds == 0 {
		q.TimerSeconds = 30
	}
	if q.TimerSeconds < 10 || q.TimerSeconds > 180 {
		return domain.Question{}, fmt.Errorf("%w: timer must be between 10 and 180 seconds", domain.ErrValidation)
	}
	return q, nil
}
