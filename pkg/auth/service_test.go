package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService([]byte("test-signing-key"))

	token, err := svc.GenerateToken("user-42")
	require.NoError(t, err)

	sub, err := svc.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

func TestSubjectRejectsForeignToken(t *testing.T) {
	issuer := NewService([]byte("key-one"))
	verifier := NewService([]byte("key-two"))

	token, err := issuer.GenerateToken("user-42")
	require.NoError(t, err)

	_, err = verifier.Subject(token)
	assert.Error(t, err)
}

func TestSubjectRejectsExpiredToken(t *testing.T) {
	svc := NewService([]byte("test-signing-key"), WithTTL(-time.Minute))

	token, err := svc.GenerateToken("user-42")
	require.NoError(t, err)

	_, err = svc.Subject(token)
	assert.Error(t, err)
}

func TestFromHeader(t *testing.T) {
	token, err := FromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = FromHeader("")
	assert.Error(t, err)

	_, err = FromHeader("Basic dXNlcjpwYXNz")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	rl.Reset()
	assert.True(t, rl.Allow())
}
