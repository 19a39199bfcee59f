package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	memoryRepo "reservo/database/repository/memory"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTenantMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TenantMiddleware(memoryRepo.NewTenants()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentTenant(c).ID)
	})

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusBadRequest},
		{"bad tenant!", http.StatusBadRequest},
		{"acme", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if tc.header != "" {
			req.Header.Set(TenantHeader, tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Fatalf("header %q: got %d, want %d", tc.header, w.Code, tc.status)
		}
		if tc.status == http.StatusOK && w.Body.String() != tc.header {
			t.Fatalf("unexpected tenant %q", w.Body.String())
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes %v", codes)
	}
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first valid", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.4, 10.0.0.1"}, "10.0.0.9:5000", "198.51.100.4"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.5 "}, "10.0.0.9:5000", "198.51.100.5"},
		{"remote addr", nil, "10.0.0.9:5000", "10.0.0.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			if got := getClientIP(c); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
