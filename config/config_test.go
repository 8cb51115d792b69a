package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
data_dir: /tmp/smartinvest
opening_balance: "250000"
fallback_price: "50"
tick_interval: 5s
news_feed_url: https://newsapi.example.com/v2/everything
news_api_key: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/smartinvest", cfg.DataDir)
	assert.Equal(t, "250000", cfg.OpeningBalance.String())
	assert.Equal(t, "50", cfg.FallbackPrice.String())
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, "https://newsapi.example.com/v2/everything", cfg.NewsFeedURL)
	assert.Equal(t, "secret", cfg.NewsAPIKey)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultOpeningBalance, cfg.OpeningBalance.String())
	assert.Equal(t, DefaultFallbackPrice, cfg.FallbackPrice.String())
	assert.Equal(t, DefaultTickInterval, cfg.TickInterval)
}

func TestLoad_BadDecimal(t *testing.T) {
	path := writeConfig(t, `opening_balance: "lots"`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "opening_balance")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFromArgs(t *testing.T) {
	cfg, err := fromArgs([]string{"--addr", ":9999", "--openingbalance", "5000"})
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "5000", cfg.OpeningBalance.String())
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestFromArgs_Repeatable(t *testing.T) {
	// a second parse within the same process must not trip flag
	// redefinition on a shared FlagSet
	for i := 0; i < 2; i++ {
		cfg, err := fromArgs([]string{"--setup"})
		require.NoError(t, err)
		assert.True(t, cfg.Setup)
	}
}

func TestFromArgs_BadDecimal(t *testing.T) {
	_, err := fromArgs([]string{"--fallbackprice", "free"})
	assert.ErrorContains(t, err, "fallbackprice")
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, `fallback_price: "0"`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "fallback price")

	path = writeConfig(t, `opening_balance: "-1"`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "opening balance")
}
