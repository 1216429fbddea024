package bundler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
	"github.com/wexinc/bundlecheck/internal/logging"
	"github.com/wexinc/bundlecheck/internal/runner"
	"github.com/wexinc/bundlecheck/internal/styles"
)

// noisyBundle writes interleaved lines to stdout and stderr.
const noisyBundle = `#!/bin/sh
i=0
while [ $i -lt 2000 ]; do
  echo "out$i"
  echo "err$i" >&2
  i=$((i+1))
done
`

func TestCheck_ExecRunnerStreamsBothPipes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}

	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle")
	require.NoError(t, os.WriteFile(bundle, []byte(noisyBundle), 0755))

	var logs bytes.Buffer
	log, err := logging.New(&logging.Config{Level: logging.LevelDebug, Console: true, Stderr: &logs})
	require.NoError(t, err)
	defer log.Close()

	var out, stdout, stderr bytes.Buffer
	c := &Checker{
		Verifier: &stubVerifier{err: bcerrors.GemsNotFound("")},
		Runner:   runner.NewExecRunner(),
		Printer:  styles.NewPrinter(&out),
		Logger:   log,
		Bundle:   bundle,
		Dir:      dir,
		Stdout:   &stdout,
		Stderr:   &stderr,
	}

	report, err := c.Check(context.Background(), Options{Autoinstall: true})
	require.NoError(t, err)
	assert.True(t, report.Installed)

	assert.Equal(t, 2000, strings.Count(stdout.String(), "out"))
	assert.Equal(t, 2000, strings.Count(stderr.String(), "err"))
	assert.Contains(t, stdout.String(), "out1999\n")
	assert.Contains(t, stderr.String(), "err1999\n")

	assert.Equal(t, 2000, strings.Count(logs.String(), "msg=out"))
	assert.Equal(t, 2000, strings.Count(logs.String(), "msg=err"))
	assert.Contains(t, logs.String(), "msg=out1999")
	assert.Contains(t, logs.String(), "msg=err1999")
}
