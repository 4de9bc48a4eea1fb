package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "bodeguero", "auth.local", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, "auth.local", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "bodeguero", claims.Role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("otro-secreto", "user-1", "", "", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, "", token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "", "", -1)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, "", token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_EmisorDistinto(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "", "otro", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, "auth.local", token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "user-1", "", "", 5)
	assert.Error(t, err)
}
