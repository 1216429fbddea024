// Package config provides configuration loading and management for bundlecheck.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
)

const (
	// DefaultConfigPath is the default config file, relative to the working directory.
	DefaultConfigPath = ".bundlecheck.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "BUNDLECHECK"
)

// Loader handles loading configuration from files and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigType("yaml")

	// BUNDLECHECK_INSTALL_AUTOINSTALL=true overrides install.autoinstall.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, NewConfig())

	return &Loader{v: v}
}

// LoadConfig loads configuration from the file at path, merges environment
// variables, applies defaults and validates the result. A non-empty path must
// exist. An empty path means DefaultConfigPath, which is optional.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	if path == "" {
		return l.load(DefaultConfigPath, true)
	}
	return l.load(path, false)
}

// LoadConfigFromDir loads the optional DefaultConfigPath file in dir.
func (l *Loader) LoadConfigFromDir(dir string) (*Config, error) {
	return l.load(filepath.Join(dir, DefaultConfigPath), true)
}

func (l *Loader) load(path string, optional bool) (*Config, error) {
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, bcerrors.ConfigParseError(path, err)
		}
	case os.IsNotExist(statErr) && optional:
		// defaults and environment only
	case os.IsNotExist(statErr):
		return nil, bcerrors.ConfigNotFound(path)
	default:
		return nil, bcerrors.Wrap(statErr, bcerrors.ErrConfig, "failed to read config file").
			WithDetails("path", path)
	}

	cfg := NewConfig()
	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, bcerrors.ConfigParseError(path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, bcerrors.Wrap(err, bcerrors.ErrConfig, "configuration validation failed").
			WithDetails("path", path)
	}

	return cfg, nil
}

// setDefaults registers every key with viper so AutomaticEnv applies to
// Unmarshal even when the file does not mention the key.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("gemfile", d.Gemfile)

	v.SetDefault("install.autoinstall", d.Install.Autoinstall)
	v.SetDefault("install.local", d.Install.Local)
	v.SetDefault("install.rbenv", d.Install.Rbenv)

	v.SetDefault("verify.method", string(d.Verify.Method))
	v.SetDefault("verify.timeout", d.Verify.Timeout)

	v.SetDefault("commands.bundle", d.Commands.Bundle)
	v.SetDefault("commands.ruby", d.Commands.Ruby)
	v.SetDefault("commands.rbenv", d.Commands.Rbenv)
	v.SetDefault("commands.git", d.Commands.Git)

	v.SetDefault("logging.level", string(d.Logging.Level))
	v.SetDefault("logging.dir", d.Logging.Dir)
	v.SetDefault("logging.json", d.Logging.JSON)
	v.SetDefault("logging.max_files", d.Logging.MaxFiles)
}

// viperDecodeHook composes the standard mapstructure hooks with ours.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToCustomTypeHookFunc(),
	)
}

// stringToCustomTypeHookFunc normalizes enum-like strings so "Ruby" and
// " ruby " both decode to VerifyMethodRuby.
func stringToCustomTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		switch to {
		case reflect.TypeOf(VerifyMethod("")):
			return VerifyMethod(normalize(data.(string))), nil
		case reflect.TypeOf(LogLevel("")):
			return LogLevel(normalize(data.(string))), nil
		}

		return data, nil
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
