package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemsNotFound(t *testing.T) {
	err := GemsNotFound("The following gems are missing\n * rake (13.0.6)\n\n")

	assert.ErrorIs(t, err, ErrGemNotFound)
	assert.Equal(t, "The following gems are missing\n * rake (13.0.6)", err.Details["output"])
	assert.Contains(t, err.Suggestion, "bundle install")
}

func TestGemsNotFound_NoOutput(t *testing.T) {
	err := GemsNotFound("  \n")
	assert.NotContains(t, err.Details, "output", "blank output should not be recorded")
}

func TestFetchFailed(t *testing.T) {
	err := FetchFailed("Git error: command `git fetch` failed")

	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Details["output"], "Git error")
}

func TestGemfileNotFound(t *testing.T) {
	err := GemfileNotFound("/work/Gemfile")

	assert.ErrorIs(t, err, ErrGemfile)
	assert.Equal(t, "/work/Gemfile", err.Details["path"])
}

func TestVerifyFailed(t *testing.T) {
	err := VerifyFailed("bundle check --dry-run", 4, "There was an error parsing `Gemfile`")

	assert.ErrorIs(t, err, ErrVerify)
	assert.Equal(t, "4", err.Details["exit_code"])
	assert.Equal(t, "bundle check --dry-run", err.Details["command"])
	assert.Contains(t, err.Error(), "exit 4")
}

func TestCommandNotFound(t *testing.T) {
	cause := errors.New(`exec: "rbenv": executable file not found in $PATH`)
	err := CommandNotFound("rbenv", cause)

	assert.ErrorIs(t, err, ErrCommand)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Suggestion, "rbenv")
}

func TestTrimOutput(t *testing.T) {
	var lines []string
	for i := 1; i <= 15; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}

	gotLines := strings.Split(trimOutput(strings.Join(lines, "\n")), "\n")

	require.Len(t, gotLines, maxOutputLines)
	assert.Equal(t, "line 6", gotLines[0])
	assert.Equal(t, "line 15", gotLines[len(gotLines)-1])
}
