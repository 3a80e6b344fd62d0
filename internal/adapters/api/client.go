// Package api is the HTTP adapter for the community REST API. Each Client
// owns its own header state (the authenticated user's identifying header is
// set on login), so concurrent workers must not share one instance.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

const maxResponseBytes = 1 << 20

const (
	loginPath        = "/account/rest/account/v1/login"
	selfPath         = "/bi/rest/v1/user/self"
	verificationPath = "/account/rest/account/v1/verification"
	verifyCodePath   = "/app/v1/verification"
	registerPath     = "/account/rest/account/v1/registry"
)

type Options struct {
	HTTPClient *http.Client
	// Headers is the base header set attached to every request (app version,
	// client type, country, environment id).
	Headers        map[string]string
	RequestTimeout time.Duration
	// RatePerSecond caps outgoing calls as a belt under the random pacing
	// delays; zero disables the limiter.
	RatePerSecond float64
}

type Client struct {
	httpClient     *http.Client
	headers        map[string]string
	requestTimeout time.Duration
	limiter        *rate.Limiter
	// userEmail identifies the logged-in account on subsequent requests.
	userEmail string
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	headers := make(map[string]string, len(opts.Headers))
	for key, value := range opts.Headers {
		headers[key] = value
	}

	return &Client{
		httpClient:     httpClient,
		headers:        headers,
		requestTimeout: requestTimeout,
		limiter:        rate.NewLimiter(limit, 1),
	}
}

type loginResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Client  struct {
		Token string `json:"token"`
	} `json:"client"`
}

// Login exchanges credentials for a bearer token and remembers the account's
// email for the identifying header on later calls.
func (c *Client) Login(ctx context.Context, baseURL, email, password, clientID string) (string, error) {
	if clientID == "" {
		clientID = domain.DefaultClientID
	}

	payload := map[string]any{
		"client":      clientID,
		"email":       email,
		"password":    password,
		"key":         "",
		"view":        0,
		"transaction": transaction(),
	}

	resp, err := c.postJSON(ctx, baseURL, loginPath, "", payload)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	if resp.HTTPStatus != http.StatusOK {
		return "", fmt.Errorf("login: status %d", resp.HTTPStatus)
	}

	var decoded loginResponse
	if err := json.Unmarshal([]byte(resp.Body), &decoded); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if decoded.Status != 200 {
		if decoded.Message != "" {
			return "", fmt.Errorf("login failed: %s", decoded.Message)
		}
		return "", fmt.Errorf("login failed: status %d", decoded.Status)
	}
	if decoded.Client.Token == "" {
		return "", errors.New("login response missing token")
	}

	c.userEmail = email

	return decoded.Client.Token, nil
}

type selfResponse struct {
	Status int `json:"status"`
	Data   struct {
		AID string `json:"aid"`
	} `json:"data"`
}

// SelfAID resolves the authenticated caller's own account identity.
func (c *Client) SelfAID(ctx context.Context, baseURL, token string) (string, error) {
	resp, err := c.Do(ctx, baseURL, token, domain.Request{Method: domain.MethodGet, Path: selfPath})
	if err != nil {
		return "", fmt.Errorf("resolve aid: %w", err)
	}
	if resp.HTTPStatus != http.StatusOK {
		return "", fmt.Errorf("resolve aid: status %d", resp.HTTPStatus)
	}

	var decoded selfResponse
	if err := json.Unmarshal([]byte(resp.Body), &decoded); err != nil {
		return "", fmt.Errorf("decode aid response: %w", err)
	}
	if decoded.Status != 200 || decoded.Data.AID == "" {
		return "", errors.New("aid response missing account identity")
	}

	return decoded.Data.AID, nil
}

// Do sends one declaratively built operation request and captures what
// success classification needs from the reply.
func (c *Client) Do(ctx context.Context, baseURL, token string, req domain.Request) (domain.Response, error) {
	endpoint, err := buildAPIURL(baseURL, req.Path)
	if err != nil {
		return domain.Response{}, err
	}
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return domain.Response{}, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Response{}, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, string(req.Method), endpoint, body)
	if err != nil {
		return domain.Response{}, fmt.Errorf("create request: %w", err)
	}
	c.applyHeaders(httpReq, token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.Response{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Response{}, fmt.Errorf("read response body: %w", err)
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

// SendVerification asks the platform to mail a verification code.
func (c *Client) SendVerification(ctx context.Context, baseURL, email string, kind int) error {
	payload := map[string]any{
		"email":       email,
		"type":        kind,
		"key":         "",
		"view":        0,
		"transaction": transaction(),
	}

	resp, err := c.postJSON(ctx, baseURL, verificationPath, "", payload)
	if err != nil {
		return fmt.Errorf("send verification: %w", err)
	}
	if resp.HTTPStatus != http.StatusOK {
		return fmt.Errorf("send verification: status %d: %s", resp.HTTPStatus, resp.Body)
	}

	return nil
}

// VerifyCode submits a mailed verification code.
func (c *Client) VerifyCode(ctx context.Context, baseURL, email, code string, kind int) error {
	payload := map[string]any{
		"code":        code,
		"email":       email,
		"type":        kind,
		"key":         "",
		"view":        0,
		"transaction": transaction(),
	}

	resp, err := c.postJSON(ctx, baseURL, verifyCodePath, "", payload)
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	if resp.HTTPStatus != http.StatusOK {
		return fmt.Errorf("verify code: status %d: %s", resp.HTTPStatus, resp.Body)
	}

	return nil
}

// Register creates the platform account once the code is verified.
func (c *Client) Register(ctx context.Context, baseURL, email, password, code string) error {
	payload := map[string]any{
		"code":        code,
		"email":       email,
		"password":    password,
		"key":         "",
		"view":        0,
		"transaction": transaction(),
	}

	resp, err := c.postJSON(ctx, baseURL, registerPath, "", payload)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if !domain.Classify(resp, false) {
		return fmt.Errorf("register: status %d: %s", resp.HTTPStatus, resp.Body)
	}

	return nil
}

func (c *Client) postJSON(ctx context.Context, baseURL, path, token string, payload map[string]any) (domain.Response, error) {
	return c.Do(ctx, baseURL, token, domain.Request{
		Method: domain.MethodPost,
		Path:   path,
		Body:   payload,
	})
}

func (c *Client) applyHeaders(req *http.Request, token string) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userEmail != "" {
		req.Header.Set("X-User-Email", c.userEmail)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}

func transaction() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
