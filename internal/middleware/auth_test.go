package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/pkg/jwt"
)

// Global middlewares (rate limit, response cache) exempt authenticated
// callers, so OptionalAuth must make the identity visible to them before
// group-level Auth runs.
func TestOptionalAuthExposesIdentityToGlobalMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer := jwt.NewSigner("test-secret", time.Hour)

	var seenAuthenticated bool
	var seenUserID string

	r := gin.New()
	r.Use(OptionalAuth(signer))
	r.Use(func(c *gin.Context) {
		seenAuthenticated = IsAuthenticated(c)
		seenUserID = CurrentUserID(c)
		c.Next()
	})
	r.GET("/content/pending", Auth(signer), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})

	token, err := signer.Sign("user-a", false)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content/pending", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !seenAuthenticated {
		t.Error("global middleware did not observe the authenticated caller")
	}
	if seenUserID != "user-a" {
		t.Errorf("global middleware saw user %q, want user-a", seenUserID)
	}
}

func TestOptionalAuthAnonymousStaysAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer := jwt.NewSigner("test-secret", time.Hour)

	var seenAuthenticated bool

	r := gin.New()
	r.Use(OptionalAuth(signer))
	r.Use(func(c *gin.Context) {
		seenAuthenticated = IsAuthenticated(c)
		c.Next()
	})
	r.GET("/content/pending", Auth(signer), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/content/pending", nil))

	if seenAuthenticated {
		t.Error("anonymous request reported as authenticated")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":    "abc",
		"bearer abc":    "abc",
		"  Bearer abc ": "abc",
		"abc":           "abc",
		"":              "",
	}
	for in, want := range cases {
		if got := NormalizeToken(in); got != want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
