package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultConfigPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := NewLoader().LoadConfig("nonexistent/config.yaml")
	require.Error(t, err)

	var checkErr *bcerrors.CheckError
	require.ErrorAs(t, err, &checkErr)
	assert.ErrorIs(t, err, bcerrors.ErrConfig)
	assert.Equal(t, "nonexistent/config.yaml", checkErr.Details["path"])
}

func TestLoadConfig_EmptyPathIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoadConfigFromDir_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, VerifyMethodBundle, cfg.Verify.Method)
	assert.Equal(t, DefaultVerifyTimeout, cfg.Verify.Timeout)
	assert.Equal(t, "bundle", cfg.Commands.Bundle)
	assert.False(t, cfg.Install.Autoinstall)
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
gemfile: gems.rb

install:
  autoinstall: true
  local: true
  rbenv: true

verify:
  method: ruby
  timeout: 30s

commands:
  bundle: /opt/ruby/bin/bundle
  rbenv: /usr/local/bin/rbenv

logging:
  level: debug
  dir: .logs
  json: true
  max_files: 3
`)

	cfg, err := NewLoader().LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gems.rb", cfg.Gemfile)
	assert.Equal(t, InstallConfig{Autoinstall: true, Local: true, Rbenv: true}, cfg.Install)
	assert.Equal(t, VerifyMethodRuby, cfg.Verify.Method)
	assert.Equal(t, 30*time.Second, cfg.Verify.Timeout)
	assert.Equal(t, "/opt/ruby/bin/bundle", cfg.Commands.Bundle)
	// Unset command keeps its default
	assert.Equal(t, "git", cfg.Commands.Git)
	assert.Equal(t, LoggingConfig{Level: LogLevelDebug, Dir: ".logs", JSON: true, MaxFiles: 3}, cfg.Logging)
}

func TestLoadConfig_NormalizesEnums(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
verify:
  method: " Ruby "
logging:
  level: WARN
`)

	cfg, err := NewLoader().LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, VerifyMethodRuby, cfg.Verify.Method)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
install:
  autoinstall: false
verify:
  timeout: 1m
`)

	t.Setenv("BUNDLECHECK_INSTALL_AUTOINSTALL", "true")
	t.Setenv("BUNDLECHECK_INSTALL_RBENV", "1")
	t.Setenv("BUNDLECHECK_VERIFY_TIMEOUT", "2m")
	t.Setenv("BUNDLECHECK_COMMANDS_BUNDLE", "bin/bundle")
	t.Setenv("BUNDLECHECK_LOGGING_MAX_FILES", "4")

	cfg, err := NewLoader().LoadConfig(configPath)
	require.NoError(t, err)

	assert.True(t, cfg.Install.Autoinstall, "install.autoinstall from env")
	assert.True(t, cfg.Install.Rbenv, "install.rbenv from env")
	assert.Equal(t, 2*time.Minute, cfg.Verify.Timeout)
	assert.Equal(t, "bin/bundle", cfg.Commands.Bundle)
	assert.Equal(t, 4, cfg.Logging.MaxFiles)
}

func TestLoadConfigFromDir_EnvWithoutFile(t *testing.T) {
	t.Setenv("BUNDLECHECK_VERIFY_METHOD", "ruby")

	cfg, err := NewLoader().LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, VerifyMethodRuby, cfg.Verify.Method)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "install:\n  autoinstall: [\n")

	_, err := NewLoader().LoadConfig(configPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, bcerrors.ErrConfig)
	assert.Contains(t, err.Error(), "failed to parse configuration")
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
verify:
  method: bundler
logging:
  level: chatty
`)

	_, err := NewLoader().LoadConfig(configPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, bcerrors.ErrConfig)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}
