package utils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyPair(t *testing.T) ([]byte, []byte) {
	t.Helper()
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	privDER, err := x509.MarshalECPrivateKey(ecKey)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privPEM, pubPEM
}

func TestGenerateAndValidateToken(t *testing.T) {
	privPEM, pubPEM := keyPair(t)

	tok, err := GenerateJWTToken(privPEM, "claim", map[string]interface{}{"uid": "u1"}, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(pubPEM, tok)
	require.NoError(t, err)

	claim, ok := claims["claim"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "u1", claim["uid"])
	assert.NotEmpty(t, claims["jti"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func TestValidateToken_Expired(t *testing.T) {
	privPEM, pubPEM := keyPair(t)

	expired, err := GenerateJWTToken(privPEM, "claim", map[string]interface{}{"uid": "u1"}, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(pubPEM, expired)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestGenerateJWTToken_ZeroTTLOmitsExpiry(t *testing.T) {
	privPEM, pubPEM := keyPair(t)

	tok, err := GenerateJWTToken(privPEM, "claim", map[string]interface{}{"uid": "u1"}, 0)
	require.NoError(t, err)

	claims, err := ValidateToken(pubPEM, tok)
	require.NoError(t, err)
	_, hasExp := claims["exp"]
	assert.False(t, hasExp)
}

func TestValidateToken_WrongKey(t *testing.T) {
	privPEM, _ := keyPair(t)
	_, otherPub := keyPair(t)

	tok, err := GenerateJWTToken(privPEM, "claim", map[string]interface{}{}, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(otherPub, tok)
	require.Error(t, err)
}

func TestGenerateJWTToken_BadKey(t *testing.T) {
	_, err := GenerateJWTToken([]byte("not a key"), "claim", nil, time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse private key")
}
