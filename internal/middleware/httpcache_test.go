package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCaptureResponseHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "image/jpeg")
	h.Set("Content-Length", "42")
	h.Set("Date", "Sat, 30 Aug 2026 00:00:00 GMT")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Cache-Control", "public, max-age=86400, immutable")

	captured := captureResponseHeaders(h)

	if got := captured["Access-Control-Allow-Origin"]; got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := captured["Cache-Control"]; got != "public, max-age=86400, immutable" {
		t.Errorf("Cache-Control = %q", got)
	}
	for _, skipped := range []string{"Content-Type", "Content-Length", "Date"} {
		if _, ok := captured[skipped]; ok {
			t.Errorf("%s should not be captured", skipped)
		}
	}
}

func TestReplayCachedResponseRestoresHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/public/image/a.jpg", nil)

	replayCachedResponse(c, cachedHTTPResponse{
		Status:      http.StatusOK,
		ContentType: "image/jpeg",
		Headers: map[string]string{
			"Access-Control-Allow-Origin": "*",
			"Cache-Control":               "public, max-age=86400, immutable",
		},
		Body: []byte("jpeg-bytes"),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin lost on replay: %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=86400, immutable" {
		t.Errorf("Cache-Control lost on replay: %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", got)
	}
	if w.Body.String() != "jpeg-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestShouldSkipCachePath(t *testing.T) {
	patterns := []string{"/api/v1/health", "/api/v1/social/*"}
	cases := map[string]bool{
		"/api/v1/health":                   true,
		"/api/v1/social/facebook/callback": true,
		"/api/v1/public/image/a.jpg":       false,
	}
	for path, want := range cases {
		if got := shouldSkipCachePath(path, patterns); got != want {
			t.Errorf("shouldSkipCachePath(%q) = %v, want %v", path, got, want)
		}
	}
}
