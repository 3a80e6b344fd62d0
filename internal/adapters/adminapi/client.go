// Package adminapi is the HTTP adapter for the administrative backend, which
// lives on a separate domain per environment and has its own login contract.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

const maxResponseBytes = 1 << 20

type Options struct {
	HTTPClient     *http.Client
	LoginPath      string
	RequestTimeout time.Duration
}

type Client struct {
	httpClient     *http.Client
	loginPath      string
	requestTimeout time.Duration
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/user/rest/v2/login"
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	return &Client{
		httpClient:     httpClient,
		loginPath:      loginPath,
		requestTimeout: requestTimeout,
	}
}

type loginResponse struct {
	Token string `json:"token"`
	Data  struct {
		Email     string `json:"email"`
		LoginName string `json:"loginName"`
	} `json:"data"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// Login authenticates against the admin backend. Success is HTTP 200 with a
// token in the body; the embedded user info supplies the audit email.
func (c *Client) Login(ctx context.Context, baseURL, username, password string) (ports.AdminIdentity, error) {
	endpoint, err := buildURL(baseURL, c.loginPath)
	if err != nil {
		return ports.AdminIdentity{}, err
	}

	payload, err := json.Marshal(map[string]string{
		"loginName": username,
		"password":  password,
	})
	if err != nil {
		return ports.AdminIdentity{}, fmt.Errorf("encode admin login payload: %w", err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ports.AdminIdentity{}, fmt.Errorf("create admin login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.AdminIdentity{}, fmt.Errorf("admin login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.AdminIdentity{}, fmt.Errorf("read admin login response: %w", err)
	}

	var decoded loginResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ports.AdminIdentity{}, fmt.Errorf("decode admin login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || decoded.Token == "" {
		message := decoded.Msg
		if message == "" {
			message = decoded.Message
		}
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return ports.AdminIdentity{}, fmt.Errorf("admin login failed: %s", message)
	}

	email := decoded.Data.Email
	if email == "" {
		email = decoded.Data.LoginName
	}
	if email == "" {
		email = username
	}

	return ports.AdminIdentity{Token: decoded.Token, Email: email}, nil
}

// Do sends one point sub-request against the admin API.
func (c *Client) Do(ctx context.Context, baseURL, token, path string, body map[string]any) (domain.Response, error) {
	endpoint, err := buildURL(baseURL, path)
	if err != nil {
		return domain.Response{}, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return domain.Response{}, fmt.Errorf("encode admin payload: %w", err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Response{}, fmt.Errorf("create admin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("originFrom", "erp")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Response{}, fmt.Errorf("send admin request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Response{}, fmt.Errorf("read admin response: %w", err)
	}

	result := domain.Response{HTTPStatus: resp.StatusCode, Body: string(raw)}

	var probe struct {
		Status *int `json:"status"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Status != nil {
		result.Status = *probe.Status
		result.StatusKnown = true
	}

	return result, nil
}

func buildURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("admin base url is required")
	}
	if path == "" {
		return "", errors.New("admin path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse admin base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("admin base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("admin base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse admin path: %w", err)
	}
	return endpoint.String(), nil
}
