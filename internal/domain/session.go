package domain

import "time"

// SessionTTL is a client-side heuristic: the login response carries no expiry
// field, so tokens are refreshed proactively after a conservative window.
const SessionTTL = 7200 * time.Second

// Session is an ephemeral cache entry for one authenticated account. It is
// never persisted across process restarts.
type Session struct {
	Email     string
	Token     string
	BaseURL   string
	ExpiresAt time.Time
}

// ValidFor reports whether the session token may be used against baseURL at
// the given instant. A token issued for one environment must never be sent to
// another, so the stored base URL has to match exactly.
func (s Session) ValidFor(baseURL string, now time.Time) bool {
	if s.Token == "" {
		return false
	}
	if s.BaseURL != baseURL {
		return false
	}

	return now.Before(s.ExpiresAt)
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
