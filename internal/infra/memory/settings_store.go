package memory

import (
	"context"
	"sync"

	"mcq-quiz-service/internal/domain"
)

// SettingsStore holds the singleton quiz configuration in memory.
type SettingsStore struct {
	mu       sync.RWMutex
	settings *domain.QuizSettings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

// Get returns the settings record, creating the default one on first access.
func (s *SettingsStore) Get(_ context.Context) (domain.QuizSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		defaults := domain.DefaultSettings()
		s.settings = &defaults
	}
	return *s.settings, nil
}

func (s *SettingsStore) Set(_ context.Context, settings domain.QuizSettings) (domain.QuizSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return settings, nil
}
