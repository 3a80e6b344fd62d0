package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

func TestLoginReusesCachedSession(t *testing.T) {
	gateway := &fakeGateway{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	sessions := NewSessionService(gateway, clock, "client-1")
	ctx := context.Background()

	first := sessions.LoginUser(ctx, "https://dev-app2.example.com", "a@test.com", "pw")
	require.True(t, first.Success)
	assert.False(t, first.Reused)
	assert.Equal(t, "token-a@test.com", first.Token)

	second := sessions.LoginUser(ctx, "https://dev-app2.example.com", "a@test.com", "pw")
	require.True(t, second.Success)
	assert.True(t, second.Reused)
	assert.Len(t, gateway.logins, 1, "cached session must not trigger a second login")
	assert.Equal(t, "client-1", gateway.logins[0].clientID)
}

func TestExpiredSessionTriggersFreshLogin(t *testing.T) {
	gateway := &fakeGateway{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	sessions := NewSessionService(gateway, clock, "")
	ctx := context.Background()

	require.True(t, sessions.LoginUser(ctx, "https://dev-app2.example.com", "a@test.com", "pw").Success)
	assert.True(t, sessions.IsLoggedIn("https://dev-app2.example.com", "a@test.com"))

	clock.now = clock.now.Add(domain.SessionTTL)
	assert.False(t, sessions.IsLoggedIn("https://dev-app2.example.com", "a@test.com"))

	result := sessions.LoginUser(ctx, "https://dev-app2.example.com", "a@test.com", "pw")
	require.True(t, result.Success)
	assert.False(t, result.Reused)
	assert.Len(t, gateway.logins, 2)
}

func TestSessionsAreScopedPerEnvironment(t *testing.T) {
	gateway := &fakeGateway{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	sessions := NewSessionService(gateway, clock, "")
	ctx := context.Background()

	require.True(t, sessions.LoginUser(ctx, "https://dev-app2.example.com", "a@test.com", "pw").Success)

	_, ok := sessions.GetToken("https://pda-app2.example.com", "a@test.com")
	assert.False(t, ok, "a dev token must never be served for pda")

	result := sessions.LoginUser(ctx, "https://pda-app2.example.com", "a@test.com", "pw")
	require.True(t, result.Success)
	assert.False(t, result.Reused)
	assert.Len(t, gateway.logins, 2)
}

func TestLoginFailureIsDataNotError(t *testing.T) {
	gateway := &fakeGateway{loginErrs: map[string]error{"bad@test.com": assert.AnError}}
	sessions := NewSessionService(gateway, &fakeClock{now: time.Now()}, "")

	result := sessions.LoginUser(context.Background(), "https://dev-app2.example.com", "bad@test.com", "pw")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "login failed")
	assert.False(t, sessions.IsLoggedIn("https://dev-app2.example.com", "bad@test.com"))
}

func TestClearSessionDropsAllEnvironments(t *testing.T) {
	gateway := &fakeGateway{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	sessions := NewSessionService(gateway, clock, "")
	ctx := context.Background()

	sessions.LoginUser(ctx, "https://dev-app2.example.com", "a@test.com", "pw")
	sessions.LoginUser(ctx, "https://pda-app2.example.com", "a@test.com", "pw")
	sessions.LoginUser(ctx, "https://dev-app2.example.com", "b@test.com", "pw")

	sessions.ClearSession("a@test.com")

	assert.False(t, sessions.IsLoggedIn("https://dev-app2.example.com", "a@test.com"))
	assert.False(t, sessions.IsLoggedIn("https://pda-app2.example.com", "a@test.com"))
	assert.True(t, sessions.IsLoggedIn("https://dev-app2.example.com", "b@test.com"))

	sessions.ClearAll()
	assert.False(t, sessions.IsLoggedIn("https://dev-app2.example.com", "b@test.com"))
}
