package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newLimiter(perMinute, perHour, perDay int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(perMinute, perHour, perDay, true)
	rl.now = clock.now
	return rl, clock
}

func TestMinuteWindowSlides(t *testing.T) {
	rl, clock := newLimiter(2, 0, 0)

	assert.True(t, rl.AllowRequest())
	assert.True(t, rl.AllowRequest())
	assert.False(t, rl.AllowRequest())

	clock.t = clock.t.Add(61 * time.Second)
	assert.True(t, rl.AllowRequest())
}

func TestHourLimitOutlivesMinuteWindow(t *testing.T) {
	rl, clock := newLimiter(10, 3, 0)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowRequest())
		clock.t = clock.t.Add(2 * time.Minute)
	}
	assert.False(t, rl.AllowRequest())

	stats := rl.GetStats()
	assert.Equal(t, 3, stats.RequestsLastHour)
	assert.Equal(t, 0, stats.RemainingThisHour)
	assert.Equal(t, -1, stats.RemainingThisDay)
}

func TestDisabledAllowsEverything(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, false)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowRequest())
	}
	assert.False(t, rl.GetStats().Enabled)
}

func TestReset(t *testing.T) {
	rl, _ := newLimiter(1, 0, 0)
	assert.True(t, rl.AllowRequest())
	assert.False(t, rl.AllowRequest())
	rl.Reset()
	assert.True(t, rl.AllowRequest())
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newLimiter(1, 0, 0)

	r := gin.New()
	r.POST("/push", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/push", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/push", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}
