package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/postcraft/core/internal/config"
)

const oauthScopes = "pages_show_list,pages_manage_posts,pages_read_engagement,instagram_basic,instagram_content_publish"

// GraphClient is a thin client for the Facebook Graph API. Calls are
// sequential request/decode pairs; no SDK, no retry.
type GraphClient struct {
	appID       string
	appSecret   string
	redirectURI string
	version     string

	// baseURL and dialogURL are overridable for tests.
	baseURL   string
	dialogURL string
	httpc     *http.Client
}

// Page is one Facebook page the user manages.
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
	Instagram   *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account,omitempty"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewGraphClient builds a Graph API client from configuration.
func NewGraphClient(cfg config.FacebookOptions) *GraphClient {
	version := cfg.GraphVersion
	if version == "" {
		version = "v21.0"
	}
	return &GraphClient{
		appID:       cfg.AppID,
		appSecret:   cfg.AppSecret,
		redirectURI: cfg.RedirectURI,
		version:     version,
		baseURL:     "https://graph.facebook.com/" + version,
		dialogURL:   "https://www.facebook.com/" + version + "/dialog/oauth",
		httpc:       &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthURL builds the OAuth dialog URL for the connect flow.
func (g *GraphClient) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", g.appID)
	q.Set("redirect_uri", g.redirectURI)
	q.Set("state", state)
	q.Set("scope", oauthScopes)
	q.Set("response_type", "code")
	return g.dialogURL + "?" + q.Encode()
}

// ExchangeCode trades an OAuth code for a user access token.
func (g *GraphClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	q := url.Values{}
	q.Set("client_id", g.appID)
	q.Set("client_secret", g.appSecret)
	q.Set("redirect_uri", g.redirectURI)
	q.Set("code", code)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := g.get(ctx, "/oauth/access_token?"+q.Encode(), &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("graph returned no access token")
	}
	return out.AccessToken, nil
}

// Pages lists the pages the user token can manage, including any linked
// Instagram business account.
func (g *GraphClient) Pages(ctx context.Context, userToken string) ([]Page, error) {
	q := url.Values{}
	q.Set("fields", "id,name,access_token,instagram_business_account")
	q.Set("access_token", userToken)

	var out struct {
		Data []Page `json:"data"`
	}
	if err := g.get(ctx, "/me/accounts?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// PublishPhoto posts a photo to a page. The Graph API fetches the image
// from the given URL, which must answer a direct 200.
func (g *GraphClient) PublishPhoto(ctx context.Context, pageID, pageToken, imageURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", pageToken)

	var out struct {
		PostID string `json:"post_id"`
		ID     string `json:"id"`
	}
	if err := g.post(ctx, "/"+pageID+"/photos", form, &out); err != nil {
		return "", err
	}
	if out.PostID != "" {
		return out.PostID, nil
	}
	return out.ID, nil
}

// PublishFeed posts a text-only message to a page feed.
func (g *GraphClient) PublishFeed(ctx context.Context, pageID, pageToken, message string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", pageToken)

	var out struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, "/"+pageID+"/feed", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// DebugToken probes whether a stored token is still valid.
func (g *GraphClient) DebugToken(ctx context.Context, token string) (bool, error) {
	q := url.Values{}
	q.Set("input_token", token)
	q.Set("access_token", g.appID+"|"+g.appSecret)

	var out struct {
		Data struct {
			IsValid bool `json:"is_valid"`
		} `json:"data"`
	}
	if err := g.get(ctx, "/debug_token?"+q.Encode(), &out); err != nil {
		return false, err
	}
	return out.Data.IsValid, nil
}

func (g *GraphClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	return g.do(req, out)
}

func (g *GraphClient) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return g.do(req, out)
}

func (g *GraphClient) do(req *http.Request, out interface{}) error {
	resp, err := g.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("graph response: %w", err)
	}

	var gerr graphError
	if json.Unmarshal(body, &gerr) == nil && gerr.Error.Message != "" {
		return fmt.Errorf("graph error %d: %s", gerr.Error.Code, gerr.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("graph status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, out)
}
