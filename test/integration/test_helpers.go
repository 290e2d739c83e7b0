//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-auth-service/internal/app"
	"go-auth-service/internal/config"
	"go-auth-service/internal/database"
	"go-auth-service/internal/model"
	"go-auth-service/internal/repository"
)

type testEnv struct {
	server *httptest.Server
	repo   *repository.SQLiteUserRepository
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		AppTitle:         "Auth Service",
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "test-secret",
		JWTAlgorithm:     "HS256",
		JWTAccessTTL:     5 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		DBDriver:         config.DriverSQLite,
		SQLitePath:       ":memory:",
		BcryptCost:       4,
		HashConcurrency:  2,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		LogLevel:         "error",
		LogFormat:        "json",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSQLiteUserRepository(db)
	handler, err := app.NewHandler(testConfig(), &app.Store{
		Users: repo,
		Ping:  db.PingContext,
		Close: func() {},
	})
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testEnv{server: server, repo: repo}
}

func (e *testEnv) do(t *testing.T, method string, path string, body any, accessToken string) (int, envelope) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func (e *testEnv) signUp(t *testing.T, username string, email string, password string) model.PublicUser {
	t.Helper()

	status, env := e.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, status)

	var user model.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &user))
	return user
}

func (e *testEnv) signIn(t *testing.T, username string, password string) model.TokenPair {
	t.Helper()

	status, env := e.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, status)

	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}
