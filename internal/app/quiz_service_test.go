package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mcq-quiz-service/internal/app"
	"mcq-quiz-service/internal/domain"
	"mcq-quiz-service/internal/infra/memory"
)

var testUser = domain.Identity{Name: "Alice", Email: "alice@example.com"}

func TestSubmitQuizCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	summary, err := service.SubmitQuiz(ctx, testUser, []int{1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if summary.Score != 1 || summary.Total != 1 {
		t.Fatalf("expected 1/1, got %d/%d", summary.Score, summary.Total)
	}
	record := summary.Results[0]
	if !record.Correct || record.UserAnswer != "b" || record.CorrectAnswer != "b" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestSubmitQuizWrongAnswer(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	summary, err := service.SubmitQuiz(ctx, testUser, []int{3})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if summary.Score != 0 || summary.Total != 1 {
		t.Fatalf("expected 0/1, got %d/%d", summary.Score, summary.Total)
	}
	record := summary.Results[0]
	if record.Correct || record.UserAnswer != "d" || record.CorrectAnswer != "b" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestSubmitQuizMissingAnswersDefaultToFirstOption(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	mustCreateQuestion(t, service, "First is right", []string{"a", "b", "c", "d"}, 1)
	mustCreateQuestion(t, service, "Second is right", []string{"w", "x", "y", "z"}, 2)

	summary, err := service.SubmitQuiz(ctx, testUser, []int{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if summary.Total != 2 || summary.Score != 1 {
		t.Fatalf("expected 1/2, got %d/%d", summary.Score, summary.Total)
	}
	if !summary.Results[0].Correct || summary.Results[0].UserAnswer != "a" {
		t.Fatalf("expected defaulted first answer to be correct: %+v", summary.Results[0])
	}
	if summary.Results[1].Correct || summary.Results[1].UserAnswer != "w" {
		t.Fatalf("expected defaulted second answer to be wrong: %+v", summary.Results[1])
	}
}

func TestSubmitQuizOutOfRangeAnswer(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	summary, err := service.SubmitQuiz(ctx, testUser, []int{9})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	record := summary.Results[0]
	if record.Correct || record.UserAnswer != "" {
		t.Fatalf("out-of-range answer must be wrong with empty text: %+v", record)
	}
}

func TestSubmitQuizEmptyBank(t *testing.T) {
	ctx := context.Background()
	service, results := newTestService(t)

	_, err := service.SubmitQuiz(ctx, testUser, []int{0})
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	stored, err := results.List(ctx)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected no result persisted, got %d", len(stored))
	}
}

func TestSubmitQuizValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	cases := []struct {
		name    string
		user    domain.Identity
		answers []int
	}{
		{"missing name", domain.Identity{Email: "a@b.c"}, []int{0}},
		{"missing email", domain.Identity{Name: "Alice"}, []int{0}},
		{"nil answers", testUser, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.SubmitQuiz(ctx, tc.user, tc.answers); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSubmitQuizPersistsAuditRecord(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)
	questions := memory.NewQuestionStore()
	results := memory.NewResultStore()
	service := app.NewQuizServiceWithClock(questions, memory.NewSettingsStore(), results, func() time.Time { return now })
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)
	mustCreateQuestion(t, service, "Pick a", []string{"a", "b", "c", "d"}, 1)

	if _, err := service.SubmitQuiz(ctx, testUser, []int{1, 2}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stored, err := results.List(ctx)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one result, got %d", len(stored))
	}
	result := stored[0]
	if result.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if result.User != testUser {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.Total != 2 || len(result.Answers) != result.Total {
		t.Fatalf("audit incomplete: total=%d answers=%d", result.Total, len(result.Answers))
	}
	if result.Score < 0 || result.Score > result.Total {
		t.Fatalf("score out of bounds: %d/%d", result.Score, result.Total)
	}
	if !result.CreatedAt.Equal(now) {
		t.Fatalf("expected submission timestamp %v, got %v", now, result.CreatedAt)
	}
}

func TestSubmitQuizAppendFailureAbortsSubmission(t *testing.T) {
	ctx := context.Background()
	questions := memory.NewQuestionStore()
	failing := &failingResultStore{}
	service := app.NewQuizService(questions, memory.NewSettingsStore(), failing)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	updates, cancel := service.Feed().Subscribe()
	defer cancel()

	if _, err := service.SubmitQuiz(ctx, testUser, []int{1}); err == nil {
		t.Fatalf("expected persistence failure to surface")
	}
	select {
	case result := <-updates:
		t.Fatalf("feed must stay silent on failed append, got %+v", result)
	default:
	}
}

func TestSubmitQuizPublishesToFeed(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	updates, cancel := service.Feed().Subscribe()
	defer cancel()

	if _, err := service.SubmitQuiz(ctx, testUser, []int{1}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case result := <-updates:
		if result.Score != 1 || result.User.Name != "Alice" {
			t.Fatalf("unexpected feed result: %+v", result)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected result on feed")
	}
}

func TestActiveQuestionsAreSanitized(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	created := mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	sanitized, err := service.ActiveQuestions(ctx)
	if err != nil {
		t.Fatalf("active questions: %v", err)
	}
	if len(sanitized) != 1 {
		t.Fatalf("expected one question, got %d", len(sanitized))
	}
	q := sanitized[0]
	if q.ID != created.ID || q.Prompt != "Pick b" || len(q.Options) != 4 {
		t.Fatalf("unexpected sanitized question: %+v", q)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	cases := []struct {
		name     string
		question domain.Question
	}{
		{"empty prompt", domain.Question{Options: []string{"a", "b", "c", "d"}, CorrectOption: 1}},
		{"three options", domain.Question{Prompt: "q", Options: []string{"a", "b", "c"}, CorrectOption: 1}},
		{"five options", domain.Question{Prompt: "q", Options: []string{"a", "b", "c", "d", "e"}, CorrectOption: 1}},
		{"correct too low", domain.Question{Prompt: "q", Options: []string{"a", "b", "c", "d"}, CorrectOption: 0}},
		{"correct too high", domain.Question{Prompt: "q", Options: []string{"a", "b", "c", "d"}, CorrectOption: 5}},
		{"timer too low", domain.Question{Prompt: "q", Options: []string{"a", "b", "c", "d"}, CorrectOption: 1, TimerSeconds: 5}},
		{"timer too high", domain.Question{Prompt: "q", Options: []string{"a", "b", "c", "d"}, CorrectOption: 1, TimerSeconds: 300}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.CreateQuestion(ctx, tc.question); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateQuestionDefaultsTimer(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	created, err := service.CreateQuestion(ctx, domain.Question{
		Prompt:        "q",
		Options:       []string{"a", "b", "c", "d"},
		CorrectOption: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.TimerSeconds != 30 {
		t.Fatalf("expected default timer 30, got %d", created.TimerSeconds)
	}
}

func TestUpdateAllTimers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	mustCreateQuestion(t, service, "Pick a", []string{"a", "b", "c", "d"}, 1)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	if err := service.UpdateAllTimers(ctx, 9); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short timer, got %v", err)
	}
	if err := service.UpdateAllTimers(ctx, 181); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for long timer, got %v", err)
	}

	if err := service.UpdateAllTimers(ctx, 60); err != nil {
		t.Fatalf("update timers: %v", err)
	}
	questions, err := service.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	for _, q := range questions {
		if q.TimerSeconds != 60 {
			t.Fatalf("expected timer 60 on %q, got %d", q.Prompt, q.TimerSeconds)
		}
	}
}

func TestSettingsLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	settings, err := service.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.DurationMinutes != 30 || settings.IsLive {
		t.Fatalf("expected default settings, got %+v", settings)
	}

	if _, err := service.UpdateSettings(ctx, domain.QuizSettings{DurationMinutes: 4}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short duration, got %v", err)
	}

	updated, err := service.UpdateSettings(ctx, domain.QuizSettings{DurationMinutes: 60, IsLive: true})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.DurationMinutes != 60 || !updated.IsLive {
		t.Fatalf("unexpected settings: %+v", updated)
	}

	settings, err = service.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings != updated {
		t.Fatalf("settings not persisted: %+v", settings)
	}
}

func TestDeleteResult(t *testing.T) {
	ctx := context.Background()
	service, results := newTestService(t)
	mustCreateQuestion(t, service, "Pick b", []string{"a", "b", "c", "d"}, 2)

	if _, err := service.SubmitQuiz(ctx, testUser, []int{1}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	stored, _ := results.List(ctx)
	if len(stored) != 1 {
		t.Fatalf("expected one result, got %d", len(stored))
	}

	if err := service.DeleteResult(ctx, stored[0].ID); err != nil {
		t.Fatalf("delete result: %v", err)
	}
	if err := service.DeleteResult(ctx, stored[0].ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func newTestService(t *testing.T) (*app.QuizService, *memory.ResultStore) {
	t.Helper()
	results := memory.NewResultStore()
	service := app.NewQuizService(memory.NewQuestionStore(), memory.NewSettingsStore(), results)
	return service, results
}

func mustCreateQuestion(t *testing.T, service *app.QuizService, prompt string, options []string, correct int) domain.Question {
	t.Helper()
	created, err := service.CreateQuestion(context.Background(), domain.Question{
		Prompt:        prompt,
		Options:       options,
		CorrectOption: correct,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return created
}

type failingResultStore struct{}

func (f *failingResultStore) Append(context.Context, domain.Result) (domain.Result, error) {
	return domain.Result{}, errors.New("store unavailable")
}

func (f *failingResultStore) List(context.Context) ([]domain.Result, error) {
	return nil, nil
}

func (f *failingResultStore) Get(context.Context, string) (domain.Result, error) {
	return domain.Result{}, domain.ErrResultNotFound
}

func (f *failingResultStore) Delete(context.Context, string) error {
	return domain.ErrResultNotFound
}
