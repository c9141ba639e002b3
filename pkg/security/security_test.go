package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	r := newRouter(CORS([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow credentials = %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := newRouter(CORS([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin header, got %q", got)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(CORS([]string{"*"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://anything.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestSecureHeaders(t *testing.T) {
	r := newRouter(Secure())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing frame options header")
	}
}

func TestRateLimiterBlocksBurst(t *testing.T) {
	r := newRouter(RateLimiter(2, time.Hour))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %d", codes[2])
	}
}

func TestVisitorStoreSweep(t *testing.T) {
	s := newVisitorStore(10, time.Minute)
	now := time.Now()

	s.get("1.1.1.1", now.Add(-10*time.Minute))
	s.get("2.2.2.2", now.Add(-10*time.Minute+time.Second))
	s.visitors["2.2.2.2"].lastSeen = now

	if removed := s.sweep(now); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := s.visitors["2.2.2.2"]; !ok {
		t.Fatal("recent visitor should be kept")
	}
}

func TestVisitorStoreSweepsOnGet(t *testing.T) {
	s := newVisitorStore(10, time.Minute)
	start := time.Now()

	s.get("1.1.1.1", start)
	s.get("2.2.2.2", start.Add(30*time.Second))
	if len(s.visitors) != 2 {
		t.Fatalf("visitors = %d, want 2", len(s.visitors))
	}

	// 两个访客都已空闲超过 3 分钟，下一次 get 会先清理再登记新访客
	s.get("3.3.3.3", start.Add(5*time.Minute))
	if len(s.visitors) != 1 {
		t.Fatalf("visitors after sweep = %d, want 1", len(s.visitors))
	}
	if _, ok := s.visitors["3.3.3.3"]; !ok {
		t.Fatal("new visitor should be registered")
	}
	if !s.lastSweep.Equal(start.Add(5 * time.Minute)) {
		t.Errorf("lastSweep = %v", s.lastSweep)
	}

	// 距上次清理不足一分钟时不清理
	s.get("4.4.4.4", start.Add(5*time.Minute+10*time.Second))
	if !s.lastSweep.Equal(start.Add(5 * time.Minute)) {
		t.Errorf("lastSweep moved to %v", s.lastSweep)
	}
}
