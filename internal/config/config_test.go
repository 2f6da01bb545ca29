// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	// Verify a few key defaults to ensure the mechanism works.
	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "console", cfg.Logger().Format)
	assert.True(t, cfg.Browser().Headless)
	assert.Equal(t, 10*time.Second, cfg.Browser().WaitTimeout)
	assert.Equal(t, "127.0.0.1:8931", cfg.Server().Addr)
	assert.False(t, cfg.Engine().DebugPacing)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine().DebugPacingInterval)
	assert.False(t, cfg.Suggest().Enabled)
	assert.Equal(t, "gemini-2.5-flash", cfg.Suggest().Model)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NoError(t, cfg.Validate(), "defaults must validate")

	negativePacing := *cfg
	negativePacing.EngineCfg.DebugPacingInterval = -time.Second
	err := negativePacing.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "engine.debug_pacing_interval")

	zeroWait := *cfg
	zeroWait.BrowserCfg.WaitTimeout = 0
	err = zeroWait.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "browser.wait_timeout")

	noAddr := *cfg
	noAddr.ServerCfg.Addr = ""
	err = noAddr.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.addr")

	suggestNoKey := *cfg
	suggestNoKey.SuggestCfg.Enabled = true
	err = suggestNoKey.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BEACON_SUGGEST_API_KEY")
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
logger:
  level: debug
engine:
  debug_pacing: true
  debug_pacing_interval: 100ms
server:
  addr: "0.0.0.0:9000"
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Logger().Level)
		assert.True(t, cfg.Engine().DebugPacing)
		assert.Equal(t, 100*time.Millisecond, cfg.Engine().DebugPacingInterval)
		assert.Equal(t, "0.0.0.0:9000", cfg.Server().Addr)
		// Check a default value was also loaded.
		assert.Equal(t, "console", cfg.Logger().Format)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("browser.wait_timeout", "0s") // Intentionally invalid

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		testKey := "test-api-key-456"
		t.Setenv("BEACON_SUGGEST_API_KEY", testKey)
		testURL := "postgres://envvar/beacon"
		t.Setenv("BEACON_STORE_URL", testURL)
		v.Set("suggest.enabled", true)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, testKey, cfg.Suggest().APIKey)
		assert.Equal(t, testURL, cfg.Store().URL)
	})
}

// -- Setter Tests --

func TestRuntimeOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	cfg.SetServerAddr("127.0.0.1:7777")
	cfg.SetEngineDebugPacing(true)
	cfg.SetBrowserHeadless(false)

	assert.Equal(t, "127.0.0.1:7777", cfg.Server().Addr)
	assert.True(t, cfg.Engine().DebugPacing)
	assert.False(t, cfg.Browser().Headless)
}
