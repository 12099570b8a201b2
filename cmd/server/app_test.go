package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/devconnector/internal/cache"
	platformconfig "github.com/qolzam/devconnector/internal/platform/config"
	"github.com/qolzam/devconnector/internal/testutil"
	"github.com/qolzam/devconnector/internal/types"
	"github.com/qolzam/devconnector/posts/models"
	"github.com/qolzam/devconnector/posts/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct{ err error }

func (s stubStore) Ping(ctx context.Context) error { return s.err }
func (s stubStore) Close() error                   { return nil }

func testConfig(t *testing.T) (*platformconfig.Config, string) {
	t.Helper()
	pubPEM, privPEM := testutil.GenerateECDSAKeyPairPEM(t)
	cfg, err := platformconfig.LoadFromMap(map[string]string{
		"JWT_PUBLIC_KEY": pubPEM,
		"DB_TYPE":        platformconfig.DatabaseMemory,
		"CACHE_ENABLED":  "true",
		"CACHE_BACKEND":  "memory",
	})
	require.NoError(t, err)
	return cfg, privPEM
}

func TestHealth(t *testing.T) {
	cfg, _ := testConfig(t)
	cacheService := cache.NewServiceFromConfig(cfg.Cache)
	t.Cleanup(func() { _ = cacheService.Close() })

	app := newApp(cfg, repository.NewMemoryRepository(), stubStore{}, cacheService)
	resp := testutil.NewHTTPHelper(t, app).NewRequest(http.MethodGet, "/health", nil).Send()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	testutil.DecodeJSON(t, resp, &health)
	assert.Equal(t, HealthResponse{Status: "ok", Database: "memory", Store: "up", Cache: "up"}, health)
}

func TestHealth_StoreDown(t *testing.T) {
	cfg, _ := testConfig(t)

	app := newApp(cfg, repository.NewMemoryRepository(), stubStore{err: errors.New("no route to host")}, nil)
	resp := testutil.NewHTTPHelper(t, app).NewRequest(http.MethodGet, "/health", nil).Send()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health HealthResponse
	testutil.DecodeJSON(t, resp, &health)
	assert.Equal(t, "down", health.Store)
	assert.Equal(t, "disabled", health.Cache)
}

func TestPostsMountedUnderBaseRoute(t *testing.T) {
	cfg, privPEM := testConfig(t)
	app := newApp(cfg, repository.NewMemoryRepository(), stubStore{}, nil)
	helper := testutil.NewHTTPHelper(t, app)

	user := testutil.CreateTestUserContext(t, "Server")
	token, err := testutil.GenerateTestJWT(privPEM, user)
	require.NoError(t, err)

	resp := helper.NewRequest(http.MethodPost, "/api/posts", models.CreatePostRequest{Text: "wired through the server"}).
		WithJWTAuth(token).Send()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = helper.NewRequest(http.MethodGet, "/api/posts", nil).Send()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Post
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, user.UserID, list[0].OwnerUserId)
	assert.NotEmpty(t, resp.Header.Get(types.HeaderRequestID))
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	cfg, _ := testConfig(t)
	app := newApp(cfg, repository.NewMemoryRepository(), stubStore{}, nil)

	resp := testutil.NewHTTPHelper(t, app).NewRequest(http.MethodGet, "/nowhere", nil).Send()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]string
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "HTTP_ERROR", body["code"])
}

func TestServe_ListenFailureIsReturned(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	quit := make(chan os.Signal, 1)

	done := make(chan error, 1)
	go func() { done <- serve(app, taken.Addr().String(), quit) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), taken.Addr().String())
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after Listen failed")
	}
}
