package models

import "errors"

// Common errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidInput  = errors.New("invalid input data")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Token errors, mapped from jwt verification
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)

// Session / turn errors
var (
	// ErrTurnInFlight is returned when a second utterance arrives while the
	// previous external call has not completed.
	ErrTurnInFlight = errors.New("a turn is already in flight for this session")

	// ErrAIUnavailable covers transport failures and malformed bodies from
	// the external model; the user turn is kept and may be retried.
	ErrAIUnavailable = errors.New("assistant is temporarily unavailable")

	// ErrMalformedAIResponse marks a reply body that could not be parsed
	// into the expected game-state shape.
	ErrMalformedAIResponse = errors.New("malformed response from assistant")
)
