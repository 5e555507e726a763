package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerEndpointAddr)
	assert.Equal(t, "kontakta.db", cfg.DatabasePath)
	assert.Equal(t, ".kontakta_token", cfg.TokenBackupPath)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestParseJsonOverlay(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")

	jc := map[string]any{
		"server_endpoint_addr": "http://example.com:9090",
		"request_timeout":      "3s",
	}
	data, err := json.Marshal(jc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, data, 0o600))

	origArgs := os.Args
	os.Args = []string{"cmd", "-c", file}
	t.Cleanup(func() { os.Args = origArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://example.com:9090", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	// untouched fields keep their defaults
	assert.Equal(t, "kontakta.db", cfg.DatabasePath)
}

func TestParseFlagsOverlay(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"cmd", "-a", "http://10.0.0.1:8081", "-w", "5"}
	t.Cleanup(func() { os.Args = origArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://10.0.0.1:8081", cfg.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}
