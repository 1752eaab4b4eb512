package constants

const (
	// ContextKeyUser is the Gin context key holding the authenticated user.
	ContextKeyUser = "current_user"

	MinPasswordLength = 8

	// Completion percentage bounds for tasks.
	MinCompletionPercentage = 0
	MaxCompletionPercentage = 100
)
