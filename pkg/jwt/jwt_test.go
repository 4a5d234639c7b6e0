package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("secret", "interaction-service")

	token, err := m.Generate("user-1", []string{"viewer"}, time.Hour)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"viewer"}, claims.Roles)
	assert.Equal(t, "interaction-service", claims.Issuer)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewManager("secret", "a").Generate("user-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = NewManager("other", "a").Verify(token)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager("secret", "a")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Generate("user-1", nil, time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{
		UserID: "user-1",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("secret", "a").Verify(signed)
	assert.Error(t, err)
}

func TestVerify_MissingUserID(t *testing.T) {
	m := NewManager("secret", "a")
	token, err := m.Generate("", nil, time.Hour)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}
