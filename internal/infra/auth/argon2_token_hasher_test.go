package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2TokenHasher_HashAndVerify(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	hash, err := hasher.Hash("some-refresh-token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	match, err := hasher.Verify(hash, "some-refresh-token")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = hasher.Verify(hash, "a-different-token")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestArgon2TokenHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	first, err := hasher.Hash("token")
	require.NoError(t, err)
	second, err := hasher.Hash("token")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both still verify against the same raw token.
	for _, hash := range []string{first, second} {
		match, err := hasher.Verify(hash, "token")
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestArgon2TokenHasher_MalformedHash(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "not a phc string", hash: "plainly-broken"},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$a2V5"},
		{name: "bad salt encoding", hash: "$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := hasher.Verify(tt.hash, "token")
			assert.Error(t, err)
			assert.False(t, match)
		})
	}
}
