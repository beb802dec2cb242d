package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL    = "https://graph.facebook.com"
	defaultAPIVersion = "v20.0"
	defaultTimeout    = 30 * time.Second
)

// Client talks to the Facebook Graph API: OAuth token exchange, Page
// discovery, Instagram Business account resolution and the media container
// publishing workflow.
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAPIVersion sets the Graph API version.
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is the error envelope the Graph API returns inside response bodies.
type APIError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API error: %s (code: %d, subcode: %d)", e.Message, e.Code, e.ErrorSubcode)
}

type errorResponse struct {
	Error *APIError `json:"error"`
}

// ExchangeCode swaps an OAuth authorization code for a user access token.
func (c *Client) ExchangeCode(ctx context.Context, appID, appSecret, redirectURI, code string) (string, error) {
	params := url.Values{}
	params.Set("client_id", appID)
	params.Set("client_secret", appSecret)
	params.Set("redirect_uri", redirectURI)
	params.Set("code", code)

	endpoint := fmt.Sprintf("%s/%s/oauth/access_token?%s", c.baseURL, c.apiVersion, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return out.AccessToken, nil
}

// Page is one Facebook Page the token's user manages.
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// ListPages returns the Pages managed by the user token. The Graph API
// normally wraps the list in a "data" array, but a single-object payload is
// accepted and treated as a one-element list.
func (c *Client) ListPages(ctx context.Context, accessToken string) ([]Page, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/%s/me/accounts?%s", c.baseURL, c.apiVersion, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, nil
	}

	var pages []Page
	if err := json.Unmarshal(out.Data, &pages); err != nil {
		var single Page
		if err := json.Unmarshal(out.Data, &single); err != nil {
			return nil, fmt.Errorf("decoding pages: %w", err)
		}
		pages = []Page{single}
	}

	return pages, nil
}

// GetPageInstagramAccount resolves the Instagram Business account linked to a
// Page. Returns an empty id when the Page has none.
func (c *Client) GetPageInstagramAccount(ctx context.Context, pageID, accessToken string) (string, error) {
	params := url.Values{}
	params.Set("fields", "instagram_business_account")
	params.Set("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.apiVersion, pageID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	var out struct {
		InstagramBusinessAccount struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}

	return out.InstagramBusinessAccount.ID, nil
}

// InstagramProfile is the IG business account detail used for display.
type InstagramProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

func (c *Client) GetInstagramProfile(ctx context.Context, igUserID, accessToken string) (*InstagramProfile, error) {
	params := url.Values{}
	params.Set("fields", "id,username,name,profile_picture_url")
	params.Set("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.apiVersion, igUserID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out InstagramProfile
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// CreateMediaContainer submits an image and caption for server-side staging
// and returns the creation id.
func (c *Client) CreateMediaContainer(ctx context.Context, igUserID, accessToken, imageURL, caption string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/media", c.baseURL, c.apiVersion, igUserID)

	payload := map[string]string{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": accessToken,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("missing creation id")
	}

	return out.ID, nil
}

// ContainerStatus reports a media container's processing state. Some
// containers never report a status_code at all; HasStatus distinguishes that
// from an explicit value, and Raw keeps the payload for diagnostics.
type ContainerStatus struct {
	StatusCode string
	HasStatus  bool
	Raw        json.RawMessage
}

func (c *Client) GetContainerStatus(ctx context.Context, creationID, accessToken string) (*ContainerStatus, error) {
	params := url.Values{}
	params.Set("fields", "status_code")
	params.Set("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.apiVersion, creationID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}

	var fields struct {
		StatusCode *string `json:"status_code"`
		Status     *struct {
			Code string `json:"code"`
		} `json:"status"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}

	status := &ContainerStatus{Raw: raw}
	switch {
	case fields.StatusCode != nil:
		status.StatusCode = *fields.StatusCode
		status.HasStatus = true
	case fields.Status != nil:
		status.StatusCode = fields.Status.Code
		status.HasStatus = true
	}

	return status, nil
}

// PublishMedia publishes a finished container and returns the IG media id.
func (c *Client) PublishMedia(ctx context.Context, igUserID, creationID, accessToken string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/media_publish", c.baseURL, c.apiVersion, igUserID)

	payload := map[string]string{
		"creation_id":  creationID,
		"access_token": accessToken,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}

	return out.ID, nil
}

// do executes a request and decodes the response. The Graph API reports
// failures through an error envelope in the body, not always through the HTTP
// status, so the envelope is checked on every response.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return errResp.Error
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("graph API error (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
