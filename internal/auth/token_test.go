package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileKeyRoundTrip(t *testing.T) {
	tok, err := GenerateToken("s3cret", "user-42", time.Hour)
	require.NoError(t, err)

	key, err := NewVerifier("s3cret").ProfileKey(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", key)
}

func TestProfileKeyRejects(t *testing.T) {
	v := NewVerifier("s3cret")

	wrongKey, err := GenerateToken("other", "user-42", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("s3cret", "user-42", -time.Minute)
	require.NoError(t, err)
	noSubject, err := GenerateToken("s3cret", "", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong key":  wrongKey,
		"expired":    expired,
		"no subject": noSubject,
		"alg none":   none,
		"garbage":    "not.a.token",
	} {
		_, err := v.ProfileKey(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestNilVerifier(t *testing.T) {
	v := NewVerifier("")
	assert.Nil(t, v)

	tok, err := GenerateToken("s3cret", "user-42", time.Hour)
	require.NoError(t, err)
	_, err = v.ProfileKey(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
