package testutil

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/internal/types"
	"github.com/qolzam/devconnector/internal/utils"
	"github.com/stretchr/testify/require"
)

// HTTPHelper provides a robust way to make HTTP requests in tests.
// It enforces error checking and provides a fluent API for building requests.
type HTTPHelper struct {
	t   *testing.T
	app *fiber.App
}

// NewHTTPHelper creates a new test helper for a given Fiber app.
func NewHTTPHelper(t *testing.T, app *fiber.App) *HTTPHelper {
	require.NotNil(t, app, "Fiber app provided to HTTPHelper cannot be nil")
	return &HTTPHelper{
		t:   t,
		app: app,
	}
}

// Request represents a test request under construction.
type Request struct {
	helper  *HTTPHelper
	method  string
	path    string
	body    []byte
	headers http.Header
	cookies []*http.Cookie
}

// NewRequest begins building a new test request. It centralizes body marshaling.
func (h *HTTPHelper) NewRequest(method, path string, body interface{}) *Request {
	var bodyBytes []byte
	if body != nil {
		switch b := body.(type) {
		case []byte:
			bodyBytes = b
		case string:
			bodyBytes = []byte(b)
		default:
			jsonBytes, err := json.Marshal(body)
			require.NoError(h.t, err, "Failed to marshal request body to JSON")
			bodyBytes = jsonBytes
		}
	}

	req := &Request{
		helper:  h,
		method:  method,
		path:    path,
		body:    bodyBytes,
		headers: make(http.Header),
	}

	if body != nil {
		req.WithHeader(types.HeaderContentType, "application/json")
	}

	return req
}

// WithHeader adds a header to the request.
func (r *Request) WithHeader(key, value string) *Request {
	r.headers.Add(key, value)
	return r
}

// WithJWTAuth adds token as an Authorization: Bearer header.
func (r *Request) WithJWTAuth(token string) *Request {
	r.WithHeader(types.HeaderAuthorization, types.BearerPrefix+token)
	return r
}

// WithCookieAuth sends token in the access_token cookie, the way the web client does.
func (r *Request) WithCookieAuth(token string) *Request {
	r.cookies = append(r.cookies, &http.Cookie{Name: types.AccessTokenCookie, Value: token})
	return r
}

// Send executes the request and returns the response.
func (r *Request) Send() *http.Response {
	req := httptest.NewRequest(r.method, r.path, bytes.NewReader(r.body))
	req.Header = r.headers
	for _, cookie := range r.cookies {
		req.AddCookie(cookie)
	}

	// Use a reasonable default timeout to prevent tests from hanging.
	resp, err := r.helper.app.Test(req, int(10*time.Second.Milliseconds()))
	require.NoError(r.helper.t, err, "app.Test should not return an error")
	require.NotNil(r.helper.t, resp, "app.Test response should not be nil")

	return resp
}

// DecodeJSON reads the response body into out and closes it.
func DecodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out), "response body: %s", string(data))
}

// CreateTestUserContext creates a test user context with a fresh user id.
func CreateTestUserContext(t *testing.T, displayName string) types.UserContext {
	t.Helper()
	userID, err := uuid.NewV4()
	require.NoError(t, err)
	return types.UserContext{
		UserID:      userID,
		Username:    displayName + "@example.com",
		DisplayName: displayName,
		Avatar:      "https://www.gravatar.com/avatar/" + userID.String(),
		SystemRole:  types.UserRole,
	}
}

// GenerateTestJWT creates a signed one-hour token for userCtx under the default claim key.
func GenerateTestJWT(privateKeyPEM string, userCtx types.UserContext) (string, error) {
	return GenerateTestJWTWithTTL(privateKeyPEM, userCtx, time.Hour)
}

// GenerateTestJWTWithTTL is GenerateTestJWT with a caller-chosen lifetime.
func GenerateTestJWTWithTTL(privateKeyPEM string, userCtx types.UserContext, ttl time.Duration) (string, error) {
	claim := map[string]interface{}{
		types.HeaderUID: userCtx.UserID.String(),
		"username":      userCtx.Username,
		"displayName":   userCtx.DisplayName,
		"avatar":        userCtx.Avatar,
		"role":          userCtx.SystemRole,
	}

	token, err := utils.GenerateJWTToken([]byte(privateKeyPEM), types.DefaultClaimKey, claim, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate test JWT: %w", err)
	}
	return token, nil
}

// GenerateECDSAKeyPairPEM generates valid ECDSA key pairs for testing.
// Returns (publicKeyPEM, privateKeyPEM) as strings.
func GenerateECDSAKeyPairPEM(t *testing.T) (string, string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "Failed to generate ECDSA private key")

	// Use PKCS8 format for private key
	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err, "Failed to marshal ECDSA private key")
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})

	// Use PKIX format for public key
	pubBytes, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err, "Failed to marshal ECDSA public key")
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	return string(pubPEM), string(privPEM)
}
