package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zhouzirui/mind-chat/backend/internal/config"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
)

func TestBuildAppWithoutAI(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendMemory},
		Chat:    config.ChatConfig{DailyLimit: 10, HistoryWindow: 5},
	}
	a, err := buildApp(t.Context(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message":"hello"}`))
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), ai.ServiceUnavailable)
}

func TestBuildAppWithSQLite(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "app.db")},
	}
	a, err := buildApp(t.Context(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	a.Close()

	_, err = os.Stat(cfg.Storage.SQLitePath)
	assert.NoError(t, err)
}

func TestLoadEnv(t *testing.T) {
	assert.NoError(t, loadEnv(""))
	assert.Error(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MINDCHAT_TEST_VALUE=42\n"), 0o600))
	t.Setenv("MINDCHAT_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("MINDCHAT_TEST_VALUE"))

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "42", os.Getenv("MINDCHAT_TEST_VALUE"))
}
