package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/seo-optimizer/tagscope/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := perform(r, http.MethodGet, "/panic", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"error":"An unexpected error occurred"}` {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := perform(r, http.MethodGet, "/", nil)
	generated := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(generated); err != nil {
		t.Errorf("Expected generated UUID, got %q", generated)
	}
	if w.Body.String() != generated {
		t.Errorf("Expected context id %q, got %q", generated, w.Body.String())
	}

	incoming := uuid.NewString()
	w = perform(r, http.MethodGet, "/", map[string]string{RequestIDHeader: incoming})
	if got := w.Header().Get(RequestIDHeader); got != incoming {
		t.Errorf("Expected incoming id %q to be kept, got %q", incoming, got)
	}

	w = perform(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "<script>"})
	if got := w.Header().Get(RequestIDHeader); got == "<script>" {
		t.Error("Invalid incoming id should be replaced")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/api/analyze", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodOptions, "/api/analyze", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(2, 5)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		if ok, _ := limiter.allow("10.0.0.1"); !ok {
			t.Fatalf("Request %d should be allowed within burst", i+1)
		}
	}

	ok, retryAfter := limiter.allow("10.0.0.1")
	if ok {
		t.Fatal("Request beyond burst should be rejected")
	}
	if retryAfter != 500*time.Millisecond {
		t.Errorf("Expected retry after 500ms, got %s", retryAfter)
	}

	if ok, _ := limiter.allow("10.0.0.2"); !ok {
		t.Error("Other clients should have their own bucket")
	}

	now = now.Add(500 * time.Millisecond)
	if ok, _ := limiter.allow("10.0.0.1"); !ok {
		t.Error("Request should be allowed after refill")
	}

	now = now.Add(time.Hour)
	limiter.allow("10.0.0.3")
	if len(limiter.clients) != 1 {
		t.Errorf("Expected idle clients to be evicted, got %d", len(limiter.clients))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, 1).RateLimit())
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if w := perform(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	w := perform(r, http.MethodGet, "/", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestStatsMiddleware(t *testing.T) {
	stats := logging.New("", false)

	r := gin.New()
	r.Use(Stats(stats))
	r.POST("/api/analyze", func(c *gin.Context) {
		c.Set(AnalyzedURLKey, "https://www.example.com/page")
		c.Status(http.StatusBadGateway)
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	perform(r, http.MethodGet, "/api/health", nil)
	if stats.TotalRequests() != 0 {
		t.Errorf("Health checks should not count as analyses, got %d", stats.TotalRequests())
	}

	perform(r, http.MethodPost, "/api/analyze", nil)
	if stats.TotalRequests() != 1 {
		t.Errorf("Expected 1 analysis request, got %d", stats.TotalRequests())
	}
	if rate := stats.GetErrorRate(); rate != 100 {
		t.Errorf("Expected error rate 100, got %v", rate)
	}
	if got := stats.GetUniqueVisitorsCount(); got != 1 {
		t.Errorf("Expected 1 unique visitor, got %d", got)
	}
}
