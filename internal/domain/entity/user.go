// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity of the system, representing a single account.
// An account is created either through traditional registration (email +
// password) or through a social identity provider, and the two paths share
// the same email namespace: no two accounts may hold the same email.
type User struct {
	ID               uuid.UUID  // The unique identifier for the account, immutable once assigned.
	Name             string     // The user's display name.
	Email            string     // The user's email, unique across all accounts regardless of origin.
	PasswordHash     string     // bcrypt hash of the password. Empty for pure social accounts.
	RefreshTokenHash string     // argon2id hash of the currently valid refresh token. Empty when logged out.
	Role             Role       // Coarse-grained authorization tag, defaults to RoleUser.
	LastLogin        *time.Time // Timestamp of the most recent credential-based login. Nil if never logged in.
	Provider         string     // Social identity provider name, e.g. "google". Empty for traditional accounts.
	ProviderID       string     // Provider-assigned user id. Set together with Provider.
	CreatedAt        time.Time  // Timestamp of when this account was created.
	UpdatedAt        time.Time  // Timestamp of the last modification to this account.
}

// HasPassword reports whether the account can authenticate with a password.
// Social-only accounts have no password hash and must use their provider.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsSocial reports whether the account originated from (or was linked to)
// a social identity provider.
func (u *User) IsSocial() bool {
	return u.Provider != "" && u.ProviderID != ""
}
