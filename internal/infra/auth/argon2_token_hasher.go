// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"conectar/internal/domain/service"
	"conectar/internal/errors"
)

// argon2id parameters. Refresh tokens are high-entropy secrets, so the cost
// can stay well below interactive password-hashing settings.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// argon2TokenHasher implements the TokenHasher interface using argon2id with
// the standard PHC string encoding, e.g.
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
type argon2TokenHasher struct{}

// NewArgon2TokenHasher is the constructor for argon2TokenHasher.
func NewArgon2TokenHasher() service.TokenHasher {
	return &argon2TokenHasher{}
}

// Hash generates a salted argon2id hash from a raw token string.
func (h *argon2TokenHasher) Hash(token string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to generate salt")
	}

	key := argon2.IDKey([]byte(token), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify reports whether the raw token matches the stored hash, re-deriving
// the key with the parameters embedded in the hash string and comparing in
// constant time.
func (h *argon2TokenHasher) Verify(hash, token string) (bool, error) {
	salt, expectedKey, params, err := decodeArgon2Hash(hash)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(token), salt, params.time, params.memory, params.threads, uint32(len(expectedKey)))

	return subtle.ConstantTimeCompare(key, expectedKey) == 1, nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

func decodeArgon2Hash(hash string) ([]byte, []byte, *argon2Params, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, nil, errors.New("malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, errors.Wrap(err, "malformed argon2id version")
	}
	if version != argon2.Version {
		return nil, nil, nil, errors.Errorf("unsupported argon2 version %d", version)
	}

	params := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, nil, errors.Wrap(err, "malformed argon2id parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "malformed argon2id salt")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "malformed argon2id key")
	}

	return salt, key, params, nil
}
