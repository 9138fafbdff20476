package service

// TokenHasher defines the interface for hashing and verifying refresh tokens
// before they are persisted. Refresh tokens are high-entropy fixed-length
// secrets, so the algorithm behind this interface (argon2id) is verification
// oriented and deliberately distinct from the password hashing primitive.
type TokenHasher interface {
	// Hash generates a salted hash from a raw token string.
	Hash(token string) (string, error)

	// Verify reports whether the raw token matches the stored hash.
	// A malformed hash yields an error; a clean mismatch yields (false, nil).
	Verify(hash, token string) (bool, error)
}
