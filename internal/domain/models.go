package domain

import "time"

// OptionCount is the fixed number of options every question carries.
const OptionCount = 4

// Question models a four-option MCQ. CorrectOption is the 1-indexed
// position of the right answer within Options and is never exposed to
// participants.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctAnswer"`
	TimerSeconds  int      `json:"timer"` // advisory display timer, defaults to 30
}

// SanitizedQuestion is the participant-facing view of a Question with the
// correct-answer pointer stripped.
type SanitizedQuestion struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	TimerSeconds int      `json:"timer"`
}

// Sanitize strips the correct-answer pointer for participant consumption.
func (q Question) Sanitize() SanitizedQuestion {
	return SanitizedQuestion{
		ID:           q.ID,
		Prompt:       q.Prompt,
		Options:      q.Options,
		TimerSeconds: q.TimerSeconds,
	}
}

// QuizSettings is the singleton quiz configuration record. Both fields are
// advisory: the scoring engine does not enforce a cutoff.
type QuizSettings struct {
	DurationMinutes int  `json:"duration"`
	IsLive          bool `json:"isLive"`
}

// DefaultSettings is materialized on first read when no record exists.
func DefaultSettings() QuizSettings {
	return QuizSettings{DurationMinutes: 30, IsLive: false}
}

// Identity is the self-asserted participant identity attached to a
// submission. It is not checked against any registry.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AnswerRecord is one per-question line of the audit trail. Texts are
// denormalized snapshots, immune to later question edits.
type AnswerRecord struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// Result is the immutable audit record persisted once per submission.
type Result struct {
	ID        string         `json:"id"`
	User      Identity       `json:"user"`
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	Answers   []AnswerRecord `json:"answers"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Summary is what the participant gets back after scoring.
type Summary struct {
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Results []AnswerRecord `json:"results"`
}
