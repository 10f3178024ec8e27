// Package handlers defines HTTP-layer error codes used across all API
// endpoints. The codes are lowercase snake_case and stable, so clients can
// branch on them programmatically; domain conditions never reach this layer
// because the conversation router answers them as chat replies.
package handlers

// The 429 code lives in the middleware package (middleware.ErrCodeRateLimited)
// because the rate limiter rejects before any handler runs.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"

	// Domain-specific:
	ErrCodeReplyFailed      = "reply_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
