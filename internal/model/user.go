// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is a closed-set attribute controlling coarse-grained authorization.
//
// WHY A NAMED STRING TYPE?
// Using `type Role string` instead of bare strings means a Role can't be
// confused with any other string, and the valid values live in one place.
// The set is closed — anything outside these four constants is rejected at
// sign-up (see Role.IsValid).
type Role string

const (
	RoleAdmin     Role = "admin"     // full access, including patient deletion
	RoleDoctor    Role = "doctor"    // clinician: read/write patients and notes
	RoleNurse     Role = "nurse"     // clinician: read/write patients and notes
	RoleAssistant Role = "assistant" // default role: read-only access
)

// DefaultRole is assigned at sign-up when no role is supplied.
const DefaultRole = RoleAssistant

// IsValid reports whether r is one of the four known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleAssistant:
		return true
	}
	return false
}

// User represents a registered staff account.
//
// WHY json:"-" ON PasswordHash?
// The password hash must never appear in an API response. The `json:"-"` tag
// makes encoding/json skip the field entirely, so even if a *User is encoded
// by accident the hash stays server-side. Handlers still shouldn't return a
// full User — they return the Public() projection below.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"` // unique, stored case-sensitively
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         Role      `json:"role"      db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the projection of a User that may leave the auth layer:
// identity, email, and role — nothing else.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}
