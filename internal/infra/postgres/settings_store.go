package postgres

import (
	"context"
	"errors"
	"fmt"

	"mcq-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SettingsStore keeps the singleton quiz configuration in a single fixed row.
type SettingsStore struct {
	pool *pgxpool.Pool
}

func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

// Get reads the settings row, inserting the default record on first access.
func (s *SettingsStore) Get(ctx context.Context) (domain.QuizSettings, error) {
	var settings domain.QuizSettings
	err := s.pool.QueryRow(ctx,
		`SELECT duration_minutes, is_live FROM quiz_settings WHERE id=1`).
		Scan(&settings.DurationMinutes, &settings.IsLive)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := domain.DefaultSettings()
		_, err := s.pool.Exec(ctx,
			`INSERT INTO quiz_settings (id, duration_minutes, is_live) VALUES (1, $1, $2) ON CONFLICT (id) DO NOTHING`,
			defaults.DurationMinutes, defaults.IsLive)
		if err != nil {
			return domain.QuizSettings{}, fmt.Errorf("init settings: %w", err)
		}
		return defaults, nil
	}
	if err != nil {
		return domain.QuizSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsStore) Set(ctx context.Context, settings domain.QuizSettings) (domain.QuizSettings, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_settings (id, duration_minutes, is_live) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET duration_minutes=EXCLUDED.duration_minutes, is_live=EXCLUDED.is_live`,
		settings.DurationMinutes, settings.IsLive)
	if err != nil {
		return domain.QuizSettings{}, fmt.Errorf("set settings: %w", err)
	}
	return settings, nil
}
