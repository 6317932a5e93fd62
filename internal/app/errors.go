package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredential  = errors.New("invalid email or password")
	ErrInvalidGoogleToken = errors.New("invalid google id token")

	ErrUserNotFound     = errors.New("user not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("exam attempt not found")
	ErrSessionNotFound  = errors.New("tutoring session not found")
	ErrMaterialNotFound = errors.New("study material not found")

	ErrAttemptCompleted = errors.New("exam attempt already submitted")
	ErrNoActiveAttempt  = errors.New("active exam attempt not found")
	ErrAnswerNotInExam  = errors.New("answer references a question not in this exam")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")

	ErrMessageEnqueue = errors.New("message enqueue failed")
)
