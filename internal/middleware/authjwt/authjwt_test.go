package authjwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/devconnector/internal/testutil"
	"github.com/qolzam/devconnector/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, publicKey string) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/me", New(Config{PublicKey: publicKey}), func(c *fiber.Ctx) error {
		userCtx, ok := GetUserContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"uid": userCtx.UserID.String(), "displayName": userCtx.DisplayName})
	})
	return app
}

func TestAuthJWT_ValidBearerToken(t *testing.T) {
	pub, priv := testutil.GenerateECDSAKeyPairPEM(t)
	user := testutil.CreateTestUserContext(t, "Ada")
	token, err := testutil.GenerateTestJWT(priv, user)
	require.NoError(t, err)

	h := testutil.NewHTTPHelper(t, newTestApp(t, pub))
	resp := h.NewRequest(http.MethodGet, "/me", nil).WithJWTAuth(token).Send()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, user.UserID.String(), body["uid"])
	assert.Equal(t, "Ada", body["displayName"])
}

func TestAuthJWT_CookieToken(t *testing.T) {
	pub, priv := testutil.GenerateECDSAKeyPairPEM(t)
	user := testutil.CreateTestUserContext(t, "Grace")
	token, err := testutil.GenerateTestJWT(priv, user)
	require.NoError(t, err)

	h := testutil.NewHTTPHelper(t, newTestApp(t, pub))
	resp := h.NewRequest(http.MethodGet, "/me", nil).WithCookieAuth(token).Send()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthJWT_Rejections(t *testing.T) {
	pub, priv := testutil.GenerateECDSAKeyPairPEM(t)
	_, otherPriv := testutil.GenerateECDSAKeyPairPEM(t)
	user := testutil.CreateTestUserContext(t, "Linus")

	expired, err := testutil.GenerateTestJWTWithTTL(priv, user, -time.Minute)
	require.NoError(t, err)
	foreign, err := testutil.GenerateTestJWT(otherPriv, user)
	require.NoError(t, err)
	noUser, err := testutil.GenerateTestJWT(priv, types.UserContext{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{name: "missing", header: "", message: ErrMissingToken.Error()},
		{name: "not bearer", header: "Basic abc", message: ErrMissingToken.Error()},
		{name: "garbage", header: types.BearerPrefix + "not.a.jwt", message: "Invalid token"},
		{name: "expired", header: types.BearerPrefix + expired, message: "Token has expired"},
		{name: "wrong signer", header: types.BearerPrefix + foreign, message: "Invalid token"},
		{name: "nil user id", header: types.BearerPrefix + noUser, message: "Invalid user context in token"},
	}

	h := testutil.NewHTTPHelper(t, newTestApp(t, pub))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := h.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.WithHeader(types.HeaderAuthorization, tt.header)
			}
			resp := req.Send()
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var body map[string]interface{}
			testutil.DecodeJSON(t, resp, &body)
			assert.Equal(t, "UNAUTHORIZED", body["code"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestValidateToken(t *testing.T) {
	pub, priv := testutil.GenerateECDSAKeyPairPEM(t)
	user := testutil.CreateTestUserContext(t, "Ken")
	token, err := testutil.GenerateTestJWT(priv, user)
	require.NoError(t, err)

	userCtx, err := ValidateToken(token, pub, "")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, userCtx.UserID)
	assert.Equal(t, user.Avatar, userCtx.Avatar)

	_, err = ValidateToken(token, pub, "other")
	assert.ErrorIs(t, err, ErrInvalidClaim)

	_, err = ValidateToken(token, "bad key", "")
	assert.Error(t, err)
}

func TestNew_PanicsOnBadKey(t *testing.T) {
	assert.Panics(t, func() { New(Config{PublicKey: "nope"}) })
}
