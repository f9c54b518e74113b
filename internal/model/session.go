package model

import "time"

// Session represents one authenticated session for one device.
//
// The token doubles as the primary key in the store and the value in the
// client's cookie — there is no separate session ID. It is generated from
// crypto/rand with at least 256 bits of entropy, so guessing is infeasible.
//
// A user may hold any number of concurrent sessions (multi-device). A session
// only leaves the store by explicit invalidation (logout) or by being detected
// as expired during validation — there is no background sweeper, expiry is
// enforced lazily.
type Session struct {
	Token     string    `json:"-"         db:"token"` // never serialized in API responses
	UserID    string    `json:"userId"    db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Expired reports whether the session's expiry is at or before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
