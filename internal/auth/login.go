package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Credential is the result of a successful account login.
type Credential struct {
	UserID       int64  `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginError is a login the account API refused.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("login rejected with status %d", e.Status)
	}
	return fmt.Sprintf("login rejected with status %d: %s", e.Status, e.Message)
}

// Authenticator exchanges account credentials for a session credential.
type Authenticator interface {
	Login(ctx context.Context, email, password string, forced bool) (*Credential, error)
}

// LoginClient talks to the account API over HTTP.
type LoginClient struct {
	baseURL    string
	device     Device
	httpClient *http.Client
}

// NewLoginClient creates an account API client.
// baseURL is the platform root, e.g. "https://katalk.kakao.com/win32".
func NewLoginClient(baseURL string, device Device) *LoginClient {
	return &LoginClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		device:  device,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *LoginClient) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

type loginResponse struct {
	Status       int    `json:"status"`
	Message      string `json:"message,omitempty"`
	UserID       int64  `json:"userId"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login authenticates with email and password. forced logs out other
// sessions of the same device.
func (c *LoginClient) Login(ctx context.Context, email, password string, forced bool) (*Credential, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("device_uuid", c.device.UUID)
	form.Set("device_name", c.device.Name)
	form.Set("forced", strconv.FormatBool(forced))
	form.Set("permanent", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/account/login.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("A", c.device.AgentHeader())
	req.Header.Set("X-VC", c.device.XVC(email))
	req.Header.Set("User-Agent", c.device.UserAgent())
	req.Header.Set("Accept-Language", c.device.Language)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http error: %s (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if lr.Status != 0 {
		return nil, &LoginError{Status: lr.Status, Message: lr.Message}
	}

	return &Credential{
		UserID:       lr.UserID,
		AccessToken:  lr.AccessToken,
		RefreshToken: lr.RefreshToken,
	}, nil
}
