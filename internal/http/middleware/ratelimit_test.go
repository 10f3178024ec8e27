package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLimitedEngine(rps float64, burst int, keyFn keyFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(rps, burst, keyFn)
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestKeyByClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fn := KeyByClientIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.7:1234"
	if got := fn(c); got != "ip:203.0.113.7" {
		t.Fatalf("expected ip key, got %q", got)
	}
}

func TestNewRateLimiter_CoercesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByClientIP())
	if rl.burst != 1 {
		t.Fatalf("expected burst coerced to 1, got %d", rl.burst)
	}
}

func TestRateLimiter_AllowsWithinBurst_ThenRejects(t *testing.T) {
	// rps=0 means no refill: exactly `burst` requests pass, then 429.
	r := newLimitedEngine(0, 2, func(*gin.Context) string { return "fixed" })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header, got %q", w.Header().Get("Retry-After"))
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid 429 body: %v", err)
	}
	if body["code"] != ErrCodeRateLimited {
		t.Fatalf("429 code = %v; want %q", body["code"], ErrCodeRateLimited)
	}
}

func TestRateLimiter_SeparateBucketsPerKey(t *testing.T) {
	keys := []string{"a", "b"}
	i := 0
	r := newLimitedEngine(0, 1, func(*gin.Context) string { k := keys[i%2]; i++; return k })

	// First request for each key passes independently.
	for j := 0; j < 2; j++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("key %d: expected 200, got %d", j, w.Code)
		}
	}
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(0, 1, KeyByClientIP())
	rl.ttl = 0 // everything is immediately stale

	rl.getVisitor("old")
	rl.cleanupN = 4999 // force GC on next lookup
	rl.getVisitor("new")

	rl.mu.Lock()
	_, oldAlive := rl.visitors["old"]
	rl.mu.Unlock()
	if oldAlive {
		t.Fatalf("expected idle visitor to be evicted")
	}
}
