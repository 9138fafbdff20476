// Package entity contains the core business objects of the project.
package entity

// ProviderType represents a social identity provider.
type ProviderType string

const (
	// ProviderTypeGoogle indicates the Google OAuth provider.
	ProviderTypeGoogle ProviderType = "google"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}

// IsValid checks if the ProviderType is a valid value.
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderTypeGoogle:
		return true
	default:
		return false
	}
}
