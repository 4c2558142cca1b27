package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/postcraft/core/internal/config"
)

func newTestGraph(t *testing.T, handler http.Handler) (*GraphClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := NewGraphClient(config.FacebookOptions{
		AppID:       "app-id",
		AppSecret:   "app-secret",
		RedirectURI: "https://example.test/callback",
	})
	g.baseURL = server.URL
	g.httpc = &http.Client{Timeout: 5 * time.Second}
	return g, server
}

func TestAuthURL(t *testing.T) {
	g := NewGraphClient(config.FacebookOptions{
		AppID:       "app-id",
		RedirectURI: "https://example.test/callback",
	})

	raw := g.AuthURL("state-123")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	if !strings.Contains(parsed.Host, "facebook.com") {
		t.Errorf("unexpected host %q", parsed.Host)
	}
	q := parsed.Query()
	if q.Get("client_id") != "app-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-123" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("redirect_uri") != "https://example.test/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("scope") == "" {
		t.Error("scope missing")
	}
}

func TestExchangeCode(t *testing.T) {
	g, _ := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") != "the-code" {
			t.Errorf("code = %q", r.URL.Query().Get("code"))
		}
		w.Write([]byte(`{"access_token": "user-token"}`))
	}))

	token, err := g.ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if token != "user-token" {
		t.Errorf("token = %q", token)
	}
}

func TestPagesIncludesInstagram(t *testing.T) {
	g, _ := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": "p1", "name": "Bakery", "access_token": "tok-1",
			 "instagram_business_account": {"id": "ig-1"}},
			{"id": "p2", "name": "Cafe", "access_token": "tok-2"}
		]}`))
	}))

	pages, err := g.Pages(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Instagram == nil || pages[0].Instagram.ID != "ig-1" {
		t.Errorf("instagram binding missing: %+v", pages[0])
	}
	if pages[1].Instagram != nil {
		t.Errorf("unexpected instagram binding: %+v", pages[1])
	}
}

func TestPublishPhoto(t *testing.T) {
	g, _ := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("url") != "https://example.test/api/v1/public/image/img-1.jpg" {
			t.Errorf("url = %q", r.PostForm.Get("url"))
		}
		w.Write([]byte(`{"id": "photo-1", "post_id": "page_post-1"}`))
	}))

	id, err := g.PublishPhoto(context.Background(), "p1", "tok-1",
		"https://example.test/api/v1/public/image/img-1.jpg", "caption")
	if err != nil {
		t.Fatalf("PublishPhoto: %v", err)
	}
	if id != "page_post-1" {
		t.Errorf("post id = %q", id)
	}
}

func TestGraphErrorSurfaces(t *testing.T) {
	g, _ := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190}}`))
	}))

	_, err := g.PublishFeed(context.Background(), "p1", "expired", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Invalid OAuth access token") {
		t.Errorf("error %q does not carry the graph message", err)
	}
}

func TestDebugToken(t *testing.T) {
	g, _ := newTestGraph(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "app-id|app-secret" {
			t.Errorf("app token = %q", r.URL.Query().Get("access_token"))
		}
		w.Write([]byte(`{"data": {"is_valid": false}}`))
	}))

	valid, err := g.DebugToken(context.Background(), "stored-token")
	if err != nil {
		t.Fatalf("DebugToken: %v", err)
	}
	if valid {
		t.Error("expected invalid token verdict")
	}
}
