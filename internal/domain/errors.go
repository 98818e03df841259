package domain

import "errors"

var (
	// ErrValidation marks caller-fixable input problems; wrap it with the
	// specific message, e.g. fmt.Errorf("%w: name is required", ErrValidation).
	ErrValidation = errors.New("invalid input")
	// ErrNoQuestions is returned when a submission arrives against an empty bank.
	ErrNoQuestions = errors.New("no questions available")
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrResultNotFound indicates the referenced result does not exist.
	ErrResultNotFound = errors.New("result not found")
	// ErrUnauthorized indicates missing or insufficient credentials.
	ErrUnauthorized = errors.New("not authorized")
)
