package models

// Gin context keys set by the auth middleware.
const (
	ContextKeyUserID = "user_id"
)
