package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS",
		"COMPLETION_TIMEOUT", "COMPLETION_MAX_INFLIGHT", "SYSTEM_PROMPT_EN",
		"CHAT_DAILY_LIMIT", "CHAT_QUOTA_FAIL_OPEN", "CHAT_HISTORY_WINDOW",
		"STORAGE_BACKEND", "SQLITE_PATH", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 16, cfg.AI.MaxInflight)
	assert.Equal(t, ChatConfig{DailyLimit: 10, QuotaFailOpen: false, HistoryWindow: 5}, cfg.Chat)
	assert.Equal(t, StorageConfig{Backend: BackendMemory, SQLitePath: "mindchat.db"}, cfg.Storage)
	assert.Equal(t, LogConfig{Level: "info", Format: "json"}, cfg.Log)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "doubao-pro")
	t.Setenv("ARK_MAX_TOKENS", "512")
	t.Setenv("COMPLETION_TIMEOUT", "5")
	t.Setenv("CHAT_DAILY_LIMIT", "3")
	t.Setenv("CHAT_QUOTA_FAIL_OPEN", "true")
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	require.NotNil(t, cfg.AI.MaxTokens)
	assert.Equal(t, 512, *cfg.AI.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 3, cfg.Chat.DailyLimit)
	assert.True(t, cfg.Chat.QuotaFailOpen)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"port with space":   {"PORT", "80 80"},
		"non-numeric limit": {"CHAT_DAILY_LIMIT", "ten"},
		"zero limit":        {"CHAT_DAILY_LIMIT", "0"},
		"bad bool":          {"CHAT_QUOTA_FAIL_OPEN", "maybe"},
		"unknown backend":   {"STORAGE_BACKEND", "mongo"},
		"unknown format":    {"LOG_FORMAT", "xml"},
		"bad temperature":   {"ARK_TEMPERATURE", "hot"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigEnabledWithAccessKeys(t *testing.T) {
	cfg := AIConfig{Model: "m", AccessKey: "ak", SecretKey: "sk"}
	assert.True(t, cfg.Enabled())

	cfg.SecretKey = ""
	assert.False(t, cfg.Enabled())
}
