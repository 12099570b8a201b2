package authjwt

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/internal/pkg/log"
	"github.com/qolzam/devconnector/internal/types"
)

var (
	ErrMissingToken = errors.New("missing or invalid JWT")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidClaim = errors.New("invalid token claim format")
)

// Config defines the config for the JWT middleware.
type Config struct {
	// The EC public key for validating ES256 tokens.
	PublicKey string
	// The claim key where the user identity is stored.
	ClaimKey string
	// The Locals key to store the UserContext under.
	UserCtxName string
}

func (cfg *Config) defaults() {
	if cfg.ClaimKey == "" {
		cfg.ClaimKey = types.DefaultClaimKey
	}
	if cfg.UserCtxName == "" {
		cfg.UserCtxName = types.UserCtxName
	}
}

// New creates a new middleware handler. It panics if the public key cannot be parsed.
func New(cfg Config) fiber.Handler {
	cfg.defaults()

	// Parse the key once on startup.
	ecPublicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(cfg.PublicKey))
	if err != nil {
		panic(fmt.Sprintf("failed to parse EC public key: %v", err))
	}

	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return unauthorized(c, ErrMissingToken.Error(), "")
		}

		userCtx, err := validate(tokenString, ecPublicKey, cfg.ClaimKey)
		if err != nil {
			log.Debug("rejected credential on %s %s: %v", c.Method(), c.Path(), err)
			return unauthorized(c, messageFor(err), err.Error())
		}

		if rid, ok := c.Locals(types.RequestIDLocal).(string); ok {
			userCtx.RequestID = rid
		}

		c.Locals(cfg.UserCtxName, userCtx)
		return c.Next()
	}
}

// ValidateToken validates a JWT token and returns the UserContext if valid.
// It does not write to the response.
func ValidateToken(tokenString, publicKey, claimKey string) (types.UserContext, error) {
	ecPublicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKey))
	if err != nil {
		return types.UserContext{}, fmt.Errorf("failed to parse EC public key: %w", err)
	}
	if claimKey == "" {
		claimKey = types.DefaultClaimKey
	}
	return validate(tokenString, ecPublicKey, claimKey)
}

// GetUserContext returns the verified identity stored by the middleware.
func GetUserContext(c *fiber.Ctx) (types.UserContext, bool) {
	userCtx, ok := c.Locals(types.UserCtxName).(types.UserContext)
	return userCtx, ok
}

func extractToken(c *fiber.Ctx) string {
	// 1. Authorization header (API clients)
	authHeader := c.Get(types.HeaderAuthorization)
	if strings.HasPrefix(authHeader, types.BearerPrefix) {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, types.BearerPrefix)); token != "" {
			return token
		}
	}
	// 2. access_token cookie (web client)
	return c.Cookies(types.AccessTokenCookie)
}

func validate(tokenString string, key *ecdsa.PublicKey, claimKey string) (types.UserContext, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// CRITICAL: Enforce the expected signing algorithm.
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		// jwt/v5 already rejects expired tokens here.
		return types.UserContext{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return types.UserContext{}, ErrInvalidToken
	}

	claimData, ok := claims[claimKey].(map[string]interface{})
	if !ok {
		return types.UserContext{}, ErrInvalidClaim
	}

	userCtx, err := mapToUserContext(claimData)
	if err != nil {
		return types.UserContext{}, fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
	return userCtx, nil
}

// mapToUserContext converts claim data to UserContext
func mapToUserContext(claimData map[string]interface{}) (types.UserContext, error) {
	var userCtx types.UserContext

	userIDStr, ok := claimData[types.HeaderUID].(string)
	if !ok {
		return userCtx, errors.New("missing or invalid uid in claim")
	}
	userID, err := uuid.FromString(userIDStr)
	if err != nil {
		return userCtx, fmt.Errorf("invalid user ID: %v", err)
	}
	if userID == uuid.Nil {
		return userCtx, errors.New("nil user ID in claim")
	}
	userCtx.UserID = userID

	if username, ok := claimData["username"].(string); ok {
		userCtx.Username = username
	}
	if displayName, ok := claimData["displayName"].(string); ok {
		userCtx.DisplayName = displayName
	}
	if avatar, ok := claimData["avatar"].(string); ok {
		userCtx.Avatar = avatar
	}
	if systemRole, ok := claimData["role"].(string); ok {
		userCtx.SystemRole = systemRole
	}

	return userCtx, nil
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, ErrInvalidClaim):
		return "Invalid user context in token"
	default:
		return "Invalid token"
	}
}

func unauthorized(c *fiber.Ctx, message, details string) error {
	body := fiber.Map{
		"code":    "UNAUTHORIZED",
		"message": message,
	}
	if details != "" {
		body["details"] = details
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
