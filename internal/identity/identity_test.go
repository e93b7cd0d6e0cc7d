package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/common"
)

var testSecret = []byte("test-secret")

func TestJWTProvider_RoundTrip(t *testing.T) {
	provider := NewJWTProvider(testSecret)

	token, err := GenerateToken(testSecret, "uid1", "Alice")
	require.NoError(t, err)

	session, err := provider.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid1", session.UserID)
	assert.Equal(t, "Alice", session.DisplayName)
}

func TestJWTProvider_EmptyTokenIsNoSession(t *testing.T) {
	provider := NewJWTProvider(testSecret)

	_, err := provider.SessionFromToken("")
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestJWTProvider_WrongSecretRejected(t *testing.T) {
	provider := NewJWTProvider(testSecret)

	token, err := GenerateToken([]byte("other-secret"), "uid1", "Alice")
	require.NoError(t, err)

	_, err = provider.SessionFromToken(token)
	assert.Error(t, err)
}

func TestJWTProvider_MissingUserIDRejected(t *testing.T) {
	provider := NewJWTProvider(testSecret)

	token, err := GenerateToken(testSecret, "", "Nameless")
	require.NoError(t, err)

	_, err = provider.SessionFromToken(token)
	assert.ErrorIs(t, err, common.ErrNoSession)
}
