package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	tok, err := SignJWT("a@x.com", "secret", time.Hour)
	require.NoError(t, err)

	sub, err := ParseJWT(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)
}

func TestJWT_SevenDayExpiry(t *testing.T) {
	tok, err := SignJWT("a@x.com", "secret", 7*24*time.Hour)
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.NotEmpty(t, claims.ID)
}

func TestJWT_Rejects(t *testing.T) {
	expired, err := SignJWT("a@x.com", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	good, err := SignJWT("a@x.com", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(good, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseJWT("not-a-token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// alg=none must never verify
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseJWT(s, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestOTP(t *testing.T) {
	code, err := GenerateOTP()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
	assert.True(t, EqualOTP(code, code))
	assert.False(t, EqualOTP(code, "x"+code[1:]))
	assert.False(t, EqualOTP("", ""))
}
