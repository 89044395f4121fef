package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port string `env:"TESTCFG_SERVER_PORT" default:"8080"`
	}
	Relay struct {
		AuthTimeout time.Duration `env:"TESTCFG_RELAY_AUTH_TIMEOUT" default:"0s"`
		Gate        bool          `env:"TESTCFG_RELAY_GATE" default:"false"`
		SendBuffer  int           `env:"TESTCFG_RELAY_SEND_BUFFER" default:"256"`
		MaxSize     int64         `env:"TESTCFG_RELAY_MAX_SIZE"`
		Origins     []string      `env:"TESTCFG_RELAY_ORIGINS"`
		Ratio       float64       `env:"TESTCFG_RELAY_RATIO" default:"0.5"`
	}
	untagged string
}

func TestParseEnv_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Zero(t, cfg.Relay.AuthTimeout)
	assert.False(t, cfg.Relay.Gate)
	assert.Equal(t, 256, cfg.Relay.SendBuffer)
	assert.Zero(t, cfg.Relay.MaxSize)
	assert.Nil(t, cfg.Relay.Origins)
	assert.InDelta(t, 0.5, cfg.Relay.Ratio, 1e-9)
	assert.Empty(t, cfg.untagged)
}

func TestParseEnv_FromEnvironment(t *testing.T) {
	t.Setenv("TESTCFG_SERVER_PORT", "9090")
	t.Setenv("TESTCFG_RELAY_AUTH_TIMEOUT", "3s")
	t.Setenv("TESTCFG_RELAY_GATE", "true")
	t.Setenv("TESTCFG_RELAY_MAX_SIZE", "1024")
	t.Setenv("TESTCFG_RELAY_ORIGINS", "https://a.test, https://b.test,")

	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Relay.AuthTimeout)
	assert.True(t, cfg.Relay.Gate)
	assert.Equal(t, int64(1024), cfg.Relay.MaxSize)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Relay.Origins)
}

func TestParseEnv_InvalidValue(t *testing.T) {
	t.Setenv("TESTCFG_RELAY_SEND_BUFFER", "lots")

	var cfg testConfig
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TESTCFG_RELAY_SEND_BUFFER")
}

func TestParseEnv_NotPointer(t *testing.T) {
	assert.ErrorIs(t, ParseEnv(testConfig{}), ErrNotStructPointer)
	assert.ErrorIs(t, ParseEnv((*testConfig)(nil)), ErrNotStructPointer)
}

func TestLoadYamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
testcfg:
  server:
    port: 7070
  relay:
    auth_timeout: ${TESTCFG_FROM_ENV:-2s}
    origins:
      - https://a.test
      - https://b.test
    empty:
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// already-set variables win over the file
	t.Setenv("TESTCFG_RELAY_GATE", "true")
	t.Setenv("TESTCFG_SERVER_PORT", "")
	t.Setenv("TESTCFG_RELAY_AUTH_TIMEOUT", "")
	t.Setenv("TESTCFG_RELAY_ORIGINS", "")

	require.NoError(t, LoadYamlFile(path))

	assert.Equal(t, "7070", os.Getenv("TESTCFG_SERVER_PORT"))
	assert.Equal(t, "2s", os.Getenv("TESTCFG_RELAY_AUTH_TIMEOUT"))
	assert.Equal(t, "https://a.test,https://b.test", os.Getenv("TESTCFG_RELAY_ORIGINS"))

	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Relay.AuthTimeout)
	assert.True(t, cfg.Relay.Gate)
}

func TestLoadYamlFile_NoPath(t *testing.T) {
	assert.ErrorIs(t, LoadYamlFile(""), ErrNoFilePath)
}

func TestLoadAndParseYaml_MissingFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	var cfg testConfig
	require.NoError(t, LoadAndParseYaml("does-not-exist.yaml", &cfg))
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TESTCFG_DOTENV_ONLY=from-dotenv\n"), 0o600))

	t.Setenv("TESTCFG_DOTENV_ONLY", "")
	require.NoError(t, os.Unsetenv("TESTCFG_DOTENV_ONLY"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("TESTCFG_DOTENV_ONLY"))
}
