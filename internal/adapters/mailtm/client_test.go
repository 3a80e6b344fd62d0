package mailtm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInboxFlow(t *testing.T) {
	var createdAddress string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/domains":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"hydra:member": []map[string]string{{"domain": "example.dev"}},
			})
		case "/accounts":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			createdAddress = body["address"]
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "acc"})
		case "/token":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "mail-tok"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL})

	inbox, err := client.CreateInbox(context.Background())
	require.NoError(t, err)
	assert.Equal(t, createdAddress, inbox.Address)
	assert.Contains(t, inbox.Address, "@example.dev")
	assert.Equal(t, "mail-tok", inbox.Token)
	assert.GreaterOrEqual(t, len(inbox.Password), passwordMinLen)
}

func TestCreateInboxNoDomains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"hydra:member": []map[string]string{}})
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL})

	_, err := client.CreateInbox(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no domains")
}

func TestMessagesRequireToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mail-tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hydra:member": []map[string]string{
				{"intro": "Your verification code is 4821."},
				{"intro": "Welcome!"},
			},
		})
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL})

	messages, err := client.Messages(context.Background(), "mail-tok")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Intro, "4821")
}

func TestGenerateUsernameShape(t *testing.T) {
	pattern := regexp.MustCompile(`^([a-z])\1{2,3}\d{2,3}$`)
	for i := 0; i < 20; i++ {
		name := GenerateUsername()
		assert.Regexp(t, pattern, name)
	}
}

func TestGeneratePasswordMinLength(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.GreaterOrEqual(t, len(GeneratePassword()), passwordMinLen)
	}
}
