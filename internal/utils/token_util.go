package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gofrs/uuid"
)

// GenerateJWTToken signs an ES256 token carrying claim under claimKey.
// The token expires ttl after issuance; a zero ttl issues a token without
// an exp claim.
func GenerateJWTToken(privateKeydata []byte, claimKey string, claim map[string]interface{}, ttl time.Duration) (string, error) {
	privateKey, keyErr := jwt.ParseECPrivateKeyFromPEM(privateKeydata)
	if keyErr != nil {
		return "", fmt.Errorf("unable to parse private key: %w", keyErr)
	}

	jti, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("unable to generate token id: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		claimKey: claim,
		"iat":    now.Unix(),
		"jti":    jti.String(),
	}
	if ttl != 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(privateKey)
}

// ValidateToken parses an ES256 token and returns its claims.
func ValidateToken(keydata []byte, token string) (jwt.MapClaims, error) {
	publicKey, keyErr := jwt.ParseECPublicKeyFromPEM(keydata)
	if keyErr != nil {
		return nil, keyErr
	}

	parsed, parseErr := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})
	if parseErr != nil {
		return nil, parseErr
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("token claim is not valid")
	}
	return claims, nil
}
