package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/config"
)

func isolate(t *testing.T, appJSON, dotEnv string) {
	t.Helper()
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")
	if appJSON != "" {
		require.NoError(t, os.WriteFile(jsonPath, []byte(appJSON), 0o644))
	}
	if dotEnv != "" {
		require.NoError(t, os.WriteFile(envPath, []byte(dotEnv), 0o644))
	}
	for _, k := range []string{"API_BASE_URL", "HTTP_TIMEOUT", "SESSION_DRIVER", "ORDERS_PAGE_LIMIT", "HTTP_RETRIES"} {
		t.Setenv(k, "")
	}
	config.Reset(jsonPath, envPath)
	t.Cleanup(func() { config.Reset("config/app.json", ".env") })
}

func TestDefaultsWhenNoFiles(t *testing.T) {
	isolate(t, "", "")

	require.NoError(t, config.Load())
	assert.Equal(t, "http://localhost:3000/api", config.APIBaseURL())
	assert.Equal(t, "file", config.SessionDriver())
	assert.Equal(t, 30*time.Second, config.HTTPTimeout())
	assert.Equal(t, 10, config.OrdersPageLimit())
}

func TestDotEnvOverridesJSON(t *testing.T) {
	isolate(t,
		`{"api_base_url": "https://json.example.com/api/", "orders_page_limit": 25}`,
		"API_BASE_URL=\"https://env.example.com/api\"\nHTTP_TIMEOUT=5\n# comment\n",
	)

	assert.Equal(t, "https://env.example.com/api", config.APIBaseURL())
	assert.Equal(t, 25, config.OrdersPageLimit())
	assert.Equal(t, 5*time.Second, config.HTTPTimeout())
}

func TestProcessEnvWins(t *testing.T) {
	isolate(t, "", "API_BASE_URL=https://env.example.com\n")
	t.Setenv("API_BASE_URL", "https://process.example.com/")

	assert.Equal(t, "https://process.example.com", config.APIBaseURL())
}

func TestInvalidValuesFallBack(t *testing.T) {
	isolate(t, "", "SESSION_DRIVER=floppy\nHTTP_TIMEOUT=soon\nHTTP_RETRIES=0\n")

	assert.Equal(t, "file", config.SessionDriver())
	assert.Equal(t, 30*time.Second, config.HTTPTimeout())
	assert.Equal(t, 1, config.HTTPRetries())
}

func TestMalformedJSONIsAnError(t *testing.T) {
	isolate(t, `{"api_base_url":`, "")

	assert.Error(t, config.Load())
}
