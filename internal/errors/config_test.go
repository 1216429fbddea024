package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigNotFound(t *testing.T) {
	err := ConfigNotFound("/path/to/config.yaml")

	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, "/path/to/config.yaml", err.Details["path"])
	assert.Contains(t, err.Suggestion, "bundlecheck config")
}

func TestConfigParseError(t *testing.T) {
	parseErr := errors.New("unexpected end of file")
	err := ConfigParseError("/path/config.yaml", parseErr)

	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, parseErr)
	assert.Contains(t, err.Suggestion, "YAML")
}

func TestConfigValidationError(t *testing.T) {
	err := ConfigValidationError("verify.method", "unknown method", []string{"bundle", "ruby"})

	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Suggestion, "bundle, ruby")
	assert.Equal(t, "verify.method", err.Details["field"])
}

func TestConfigValidationError_NoOptions(t *testing.T) {
	err := ConfigValidationError("commands.bundle", "must not be empty", nil)

	assert.Contains(t, err.Suggestion, "Fix the")
	assert.NotContains(t, err.Suggestion, "Valid options")
}
