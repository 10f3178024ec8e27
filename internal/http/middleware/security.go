package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions controls the hardening headers emitted per response.
type SecurityOptions struct {
	// EnableHSTS adds Strict-Transport-Security when the request arrived
	// over TLS (directly or via X-Forwarded-Proto from the ingress).
	EnableHSTS bool
	// HSTSMaxAge is the HSTS max-age; <= 0 falls back to 180 days.
	HSTSMaxAge time.Duration
	// NoStore adds Cache-Control: no-store and friends. Webhook replies and
	// the listings API are per-user, so production turns this on.
	NoStore bool
	// EnablePolicy adds a restrictive Permissions-Policy and
	// X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
}

// SecurityHeaders sets the standard hardening headers on every response.
// The service only serves JSON, so the policy set is intentionally blunt:
// no framing, no sniffing, no referrer leakage.
func SecurityHeaders(opts SecurityOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opts.EnablePolicy {
			h.Set("Permissions-Policy", "accelerometer=(), camera=(), geolocation=(), microphone=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opts.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opts.EnableHSTS && isHTTPS(c.Request) {
			maxAge := opts.HSTSMaxAge
			if maxAge <= 0 {
				maxAge = 180 * 24 * time.Hour
			}
			h.Set("Strict-Transport-Security",
				"max-age="+strconv.Itoa(int(maxAge.Seconds()))+"; includeSubDomains; preload")
		}

		// Let browser callers of the listings API read the correlation ID.
		if h.Get(requestIDHeader) != "" {
			existing := h.Get("Access-Control-Expose-Headers")
			switch {
			case existing == "":
				h.Set("Access-Control-Expose-Headers", requestIDHeader)
			case !strings.Contains(existing, requestIDHeader):
				h.Set("Access-Control-Expose-Headers", existing+", "+requestIDHeader)
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request arrived over TLS, honoring the
// X-Forwarded-Proto header set by the ingress.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
