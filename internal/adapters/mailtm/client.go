// Package mailtm is the HTTP adapter for the disposable-email provider used
// during account generation.
package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/community-accounts-cli/internal/ports"
)

const maxResponseBytes = 1 << 20

const (
	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	digits           = "0123456789"
	passwordMinLen   = 8
)

type Options struct {
	HTTPClient     *http.Client
	BaseURL        string
	RequestTimeout time.Duration
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	requestTimeout time.Duration
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mail.tm"
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		requestTimeout: requestTimeout,
	}
}

type hydraMember struct {
	Domain string `json:"domain"`
	Intro  string `json:"intro"`
}

type hydraResponse struct {
	Members []hydraMember `json:"hydra:member"`
}

// CreateInbox provisions a fresh disposable mailbox: pick the provider's
// first advertised domain, register a generated address, then log in for a
// message-polling token.
func (c *Client) CreateInbox(ctx context.Context) (ports.Inbox, error) {
	domain, err := c.firstDomain(ctx)
	if err != nil {
		return ports.Inbox{}, err
	}

	address := GenerateUsername() + "@" + domain
	password := GeneratePassword()

	if err := c.createAccount(ctx, address, password); err != nil {
		return ports.Inbox{}, err
	}

	token, err := c.token(ctx, address, password)
	if err != nil {
		return ports.Inbox{}, err
	}

	return ports.Inbox{Address: address, Password: password, Token: token}, nil
}

// Messages lists the inbox, newest first.
func (c *Client) Messages(ctx context.Context, token string) ([]ports.MailMessage, error) {
	raw, status, err := c.get(ctx, "/messages?page=1", token)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list messages: status %d", status)
	}

	var decoded hydraResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	messages := make([]ports.MailMessage, 0, len(decoded.Members))
	for _, member := range decoded.Members {
		messages = append(messages, ports.MailMessage{Intro: member.Intro})
	}

	return messages, nil
}

func (c *Client) firstDomain(ctx context.Context) (string, error) {
	raw, status, err := c.get(ctx, "/domains?page=1", "")
	if err != nil {
		return "", fmt.Errorf("list mail domains: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("list mail domains: status %d", status)
	}

	var decoded hydraResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode mail domains: %w", err)
	}
	if len(decoded.Members) == 0 || decoded.Members[0].Domain == "" {
		return "", errors.New("mail provider returned no domains")
	}

	return decoded.Members[0].Domain, nil
}

func (c *Client) createAccount(ctx context.Context, address, password string) error {
	_, status, err := c.post(ctx, "/accounts", map[string]string{
		"address":  address,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("create mailbox: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("create mailbox: status %d", status)
	}

	return nil
}

func (c *Client) token(ctx context.Context, address, password string) (string, error) {
	raw, status, err := c.post(ctx, "/token", map[string]string{
		"address":  address,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("mailbox token: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("mailbox token: status %d", status)
	}

	var decoded struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode mailbox token: %w", err)
	}
	if decoded.Token == "" {
		return "", errors.New("mailbox token response missing token")
	}

	return decoded.Token, nil
}

func (c *Client) get(ctx context.Context, path, token string) ([]byte, int, error) {
	requestCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req)
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encode payload: %w", err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	return raw, resp.StatusCode, nil
}

// GenerateUsername builds a throwaway local part: one lowercase letter
// repeated three or four times, followed by two or three digits.
func GenerateUsername() string {
	letter := lowercaseLetters[rand.Intn(len(lowercaseLetters))]
	repeat := 3 + rand.Intn(2)

	var b strings.Builder
	for i := 0; i < repeat; i++ {
		b.WriteByte(letter)
	}

	digitCount := 2 + rand.Intn(2)
	for i := 0; i < digitCount; i++ {
		b.WriteByte(digits[rand.Intn(len(digits))])
	}

	return b.String()
}

// GeneratePassword builds a mailbox password: a two-digit base repeated three
// or four times plus a lowercase letter, padded to the minimum length.
func GeneratePassword() string {
	base := fmt.Sprintf("%02d", 10+rand.Intn(90))
	repeat := 3 + rand.Intn(2)

	var b strings.Builder
	for i := 0; i < repeat; i++ {
		b.WriteString(base)
	}
	b.WriteByte(lowercaseLetters[rand.Intn(len(lowercaseLetters))])

	for b.Len() < passwordMinLen {
		b.WriteByte(lowercaseLetters[rand.Intn(len(lowercaseLetters))])
	}

	return b.String()
}
