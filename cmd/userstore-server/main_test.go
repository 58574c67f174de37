package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eion/userstore/internal/config"
)

func newTestAppState(t *testing.T) (*AppState, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.json")
	t.Setenv("USERSTORE_STORAGE_PATH", path)
	config.LoadDefault()
	config.ApplyEnvOverrides()

	as, err := newAppState(context.Background(), zap.NewNop())
	require.NoError(t, err)
	return as, path
}

func TestNewAppState_FileDriver(t *testing.T) {
	as, _ := newTestAppState(t)

	assert.Equal(t, "file", as.Store.Name())
	assert.Nil(t, as.DB)
	assert.NoError(t, as.HealthManager.StartupHealthCheck(context.Background()))
}

func TestNewAppState_UnknownDriver(t *testing.T) {
	t.Setenv("USERSTORE_STORAGE_DRIVER", "redis")
	config.LoadDefault()
	config.ApplyEnvOverrides()

	_, err := newAppState(context.Background(), zap.NewNop())
	assert.Error(t, err)
}

func TestRouter_UsersAndHealth(t *testing.T) {
	as, _ := newTestAppState(t)
	router := setupRouter(as)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Bob","age":30}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Bob","age":30}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"healthy"`)
}

func TestRouter_HealthReportsCorruptStorage(t *testing.T) {
	as, path := newTestAppState(t)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	router := setupRouter(as)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
}

func TestRequestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	as, _ := newTestAppState(t)
	router := setupRouter(as)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
