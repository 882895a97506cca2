package models

// Machine-readable error codes returned alongside HTTP statuses.
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeValidation    = "VALIDATION_FAILED"
	ErrCodeTokenInvalid  = "TOKEN_INVALID"
	ErrCodeTokenExpired  = "TOKEN_EXPIRED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeTurnInFlight  = "TURN_IN_FLIGHT"
	ErrCodeAIUnavailable = "AI_UNAVAILABLE"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
