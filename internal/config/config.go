// Package config provides configuration data structures for bundlecheck.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete bundlecheck configuration.
type Config struct {
	// Gemfile overrides the manifest path, relative to the working directory.
	// Empty means Gemfile in the working directory.
	Gemfile  string         `yaml:"gemfile"  json:"gemfile"  mapstructure:"gemfile"`
	Install  InstallConfig  `yaml:"install"  json:"install"  mapstructure:"install"`
	Verify   VerifyConfig   `yaml:"verify"   json:"verify"   mapstructure:"verify"`
	Commands CommandsConfig `yaml:"commands" json:"commands" mapstructure:"commands"`
	Logging  LoggingConfig  `yaml:"logging"  json:"logging"  mapstructure:"logging"`
}

// InstallConfig controls what happens when gems are missing.
type InstallConfig struct {
	// Autoinstall runs `bundle install` instead of only advising it.
	Autoinstall bool `yaml:"autoinstall" json:"autoinstall" mapstructure:"autoinstall"`
	// Local tries `bundle install --local` first, falling back to a normal install.
	Local bool `yaml:"local" json:"local" mapstructure:"local"`
	// Rbenv runs `rbenv rehash` after installing.
	Rbenv bool `yaml:"rbenv" json:"rbenv" mapstructure:"rbenv"`
}

// VerifyMethod selects how dependencies are verified.
type VerifyMethod string

const (
	// VerifyMethodBundle runs `bundle check --dry-run`.
	VerifyMethodBundle VerifyMethod = "bundle"
	// VerifyMethodRuby runs Bundler.setup in a ruby process.
	VerifyMethodRuby VerifyMethod = "ruby"
)

// VerifyConfig configures dependency verification.
type VerifyConfig struct {
	// Method is the verification method (default: bundle).
	Method VerifyMethod `yaml:"method" json:"method" mapstructure:"method"`
	// Timeout bounds the verification subprocess. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// CommandsConfig names the external executables.
type CommandsConfig struct {
	Bundle string `yaml:"bundle" json:"bundle" mapstructure:"bundle"`
	Ruby   string `yaml:"ruby"   json:"ruby"   mapstructure:"ruby"`
	Rbenv  string `yaml:"rbenv"  json:"rbenv"  mapstructure:"rbenv"`
	Git    string `yaml:"git"    json:"git"    mapstructure:"git"`
}

// LogLevel is the minimum level written by the logger.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	// Level is the minimum log level (default: info).
	Level LogLevel `yaml:"level" json:"level" mapstructure:"level"`
	// Dir is the log file directory. Empty disables the log file.
	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`
	// JSON switches log output to JSON.
	JSON bool `yaml:"json" json:"json" mapstructure:"json"`
	// MaxFiles is how many log files to keep in Dir (default: 10).
	MaxFiles int `yaml:"max_files" json:"max_files" mapstructure:"max_files"`
}

// Default values.
const (
	DefaultVerifyTimeout = 5 * time.Minute
	DefaultMaxLogFiles   = 10
)

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		Install: InstallConfig{},
		Verify: VerifyConfig{
			Method:  VerifyMethodBundle,
			Timeout: DefaultVerifyTimeout,
		},
		Commands: CommandsConfig{
			Bundle: "bundle",
			Ruby:   "ruby",
			Rbenv:  "rbenv",
			Git:    "git",
		},
		Logging: LoggingConfig{
			Level:    LogLevelInfo,
			MaxFiles: DefaultMaxLogFiles,
		},
	}
}

// ApplyDefaults applies default values to any unset fields.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.Verify.Method == "" {
		c.Verify.Method = defaults.Verify.Method
	}

	if c.Commands.Bundle == "" {
		c.Commands.Bundle = defaults.Commands.Bundle
	}
	if c.Commands.Ruby == "" {
		c.Commands.Ruby = defaults.Commands.Ruby
	}
	if c.Commands.Rbenv == "" {
		c.Commands.Rbenv = defaults.Commands.Rbenv
	}
	if c.Commands.Git == "" {
		c.Commands.Git = defaults.Commands.Git
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = defaults.Logging.MaxFiles
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	switch c.Verify.Method {
	case VerifyMethodBundle, VerifyMethodRuby:
		// valid
	default:
		errs = append(errs, &ValidationError{
			Field:   "verify.method",
			Message: "must be 'bundle' or 'ruby'",
		})
	}
	if c.Verify.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "verify.timeout", Message: "must be non-negative"})
	}

	commands := []struct {
		field, value string
	}{
		{"commands.bundle", c.Commands.Bundle},
		{"commands.ruby", c.Commands.Ruby},
		{"commands.rbenv", c.Commands.Rbenv},
		{"commands.git", c.Commands.Git},
	}
	for _, cmd := range commands {
		if cmd.value == "" {
			errs = append(errs, &ValidationError{Field: cmd.field, Message: "must not be empty"})
		}
	}

	switch c.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level),
		})
	}
	if c.Logging.MaxFiles < 0 {
		errs = append(errs, &ValidationError{Field: "logging.max_files", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
