package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestLimiter(t *testing.T, max int, per time.Duration) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRateLimiter(ctx, max, per)
}

func TestRateLimiterWithinLimit(t *testing.T) {
	rl := newTestLimiter(t, 5, time.Minute)
	for i := 0; i < 5; i++ {
		if ok, _ := rl.allow("1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiterOverLimit(t *testing.T) {
	rl := newTestLimiter(t, 2, time.Minute)
	rl.allow("1.2.3.4")
	rl.allow("1.2.3.4")
	ok, wait := rl.allow("1.2.3.4")
	if ok {
		t.Fatal("should be rate limited")
	}
	if wait <= 0 || wait > 30*time.Second {
		t.Fatalf("unexpected wait %v", wait)
	}
}

func TestRateLimiterTokenRefill(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("1.2.3.4")
	if ok, _ := rl.allow("1.2.3.4"); ok {
		t.Fatal("should be rate limited immediately")
	}
	now = now.Add(61 * time.Second)
	if ok, _ := rl.allow("1.2.3.4"); !ok {
		t.Fatal("token should have refilled")
	}
}

func TestRateLimiterDifferentIPs(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	rl.allow("1.1.1.1")
	if ok, _ := rl.allow("2.2.2.2"); !ok {
		t.Fatal("different IP should have its own bucket")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("1.1.1.1")
	now = now.Add(11 * time.Minute)
	rl.allow("2.2.2.2")
	rl.sweep()

	if _, ok := rl.clients["1.1.1.1"]; ok {
		t.Fatal("idle bucket should be swept")
	}
	if _, ok := rl.clients["2.2.2.2"]; !ok {
		t.Fatal("recent bucket should be kept")
	}
}

func TestRateLimiterMiddleware429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newTestLimiter(t, 1, time.Minute)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("GET", "/test", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/test", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}
