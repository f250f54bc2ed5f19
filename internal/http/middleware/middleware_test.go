package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spot_difference/internal/metrics"
	"spot_difference/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	username, _ := GetUsername(c)
	c.JSON(http.StatusOK, gin.H{"username": username})
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, username string) map[string]string {
	t.Helper()
	token, err := service.GenerateJWT(username)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthRequired(t *testing.T) {
	service.InitJWT("test-secret", time.Hour)

	r := gin.New()
	r.GET("/me", AuthRequired(), okHandler)

	w := do(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", bearer(t, "alice"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestAdminOnly(t *testing.T) {
	service.InitJWT("test-secret", time.Hour)

	r := gin.New()
	r.PUT("/admin", AuthRequired(), AdminOnly("admin"), okHandler)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPut, "/admin", bearer(t, "alice")).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/admin", bearer(t, "Admin")).Code)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(NewRateLimiter(rdb, 2).Middleware())
	r.GET("/ping", okHandler)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)

	w := do(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := gin.New()
	r.Use(NewRateLimiter(rdb, 1).Middleware())
	r.GET("/ping", okHandler)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	}
}

func TestRateLimiter_DisabledWithoutRedis(t *testing.T) {
	ok, err := NewRateLimiter(nil, 1).Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", okHandler)

	w := do(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = do(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/items/:id", okHandler)

	do(r, http.MethodGet, "/items/1", nil)
	do(r, http.MethodGet, "/items/2", nil)
	do(r, http.MethodGet, "/missing", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://game.example"))
	r.GET("/ping", okHandler)
	r.OPTIONS("/ping", okHandler)

	w := do(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://game.example"})
	assert.Equal(t, "https://game.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/ping", map[string]string{"Origin": "https://game.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
