// Package middleware contains shared Gin middleware for the webhook surface.
//
// This file carries the correlation and crash-safety pieces:
//
//   - RequestID() gives every webhook call a stable correlation ID
//     (X-Request-ID header plus Gin context), so a chat turn can be traced
//     from the platform's POST through the conversation router to the reply.
//   - Recovery() turns panics into the standard JSON 500 envelope without
//     losing the correlation ID, and logs the stack.
//   - LoggerFrom() hands request-scoped loggers to handlers, e.g.
//     lg.Warn().Str("user_key", key).Msg("…").
//
// Access logging itself lives in RedactingLogger (redact_logger.go), which is
// the only request logger this service mounts: webhook traffic carries names
// and phone numbers, so the plain variant was dropped rather than risk it
// being wired in by mistake.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
)

// RequestID attaches (or propagates) a correlation identifier per request.
// An incoming X-Request-ID is reused so the chat platform's own retries stay
// correlated; otherwise a fresh UUIDv4 is generated. The ID is written to the
// response header and stored under "requestID" in the Gin context.
//
// Mount this before RedactingLogger and Recovery so both can include the ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Recovery intercepts panics, logs the stack with the request ID, and answers
// with the standard JSON 500 envelope. When a handler already wrote part of a
// response, only the status is forced; the body is left alone.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": asString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger, or a fallback built
// from the global logger when none was attached. Callers never need a nil
// check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString converts a context value to a string, empty when it is not one.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
