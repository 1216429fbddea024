package bundler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wexinc/bundlecheck/internal/config"
	bcerrors "github.com/wexinc/bundlecheck/internal/errors"
	"github.com/wexinc/bundlecheck/internal/runner"
	"github.com/wexinc/bundlecheck/internal/runner/runnertest"
)

const bundleCheck = "bundle check --dry-run"

func TestBundleVerifier_Verify(t *testing.T) {
	tests := []struct {
		name     string
		resp     runnertest.Response
		wantKind error
	}{
		{
			name: "satisfied",
			resp: runnertest.Response{Stdout: "The Gemfile's dependencies are satisfied\n"},
		},
		{
			name: "missing gems",
			resp: runnertest.Response{
				ExitCode: 1,
				Stdout:   "The following gems are missing\n * rake (13.0.6)\nInstall missing gems with `bundle install`\n",
			},
			wantKind: bcerrors.ErrGemNotFound,
		},
		{
			name: "cannot satisfy",
			resp: runnertest.Response{
				ExitCode: 1,
				Stderr:   "Bundler can't satisfy your Gemfile's dependencies.\n",
			},
			wantKind: bcerrors.ErrGemNotFound,
		},
		{
			name:     "gem not found status",
			resp:     runnertest.Response{ExitCode: 7, Stderr: "Could not find rake-13.0.6 in locally installed gems\n"},
			wantKind: bcerrors.ErrGemNotFound,
		},
		{
			name:     "git error status",
			resp:     runnertest.Response{ExitCode: 11},
			wantKind: bcerrors.ErrFetch,
		},
		{
			name: "git source not checked out",
			resp: runnertest.Response{
				ExitCode: 1,
				Stderr:   "The git source https://github.com/rails/rails.git is not yet checked out. Please run `bundle install` before trying to start your application\n",
			},
			wantKind: bcerrors.ErrFetch,
		},
		{
			name:     "no Gemfile",
			resp:     runnertest.Response{ExitCode: 10, Stderr: "Could not locate Gemfile\n"},
			wantKind: bcerrors.ErrGemfile,
		},
		{
			name:     "Gemfile syntax error",
			resp:     runnertest.Response{ExitCode: 4, Stderr: "There was an error parsing `Gemfile`: syntax error\n"},
			wantKind: bcerrors.ErrVerify,
		},
		{
			name:     "exit 1 without markers",
			resp:     runnertest.Response{ExitCode: 1, Stderr: "something else went wrong\n"},
			wantKind: bcerrors.ErrVerify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := runnertest.New().On(bundleCheck, tt.resp)
			v := &BundleVerifier{Runner: fake, Dir: "/project"}

			err := v.Verify(context.Background())
			if tt.wantKind == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantKind)
			}

			assert.Equal(t, []string{bundleCheck}, fake.Calls())
			assert.Equal(t, "/project", fake.Commands()[0].Dir)
		})
	}
}

func TestBundleVerifier_UnrecognizedIsNotRecoverable(t *testing.T) {
	fake := runnertest.New().On(bundleCheck, runnertest.Response{ExitCode: 4, Stderr: "boom\n"})
	v := &BundleVerifier{Runner: fake}

	err := v.Verify(context.Background())
	require.Error(t, err)
	assert.False(t, bcerrors.IsRecoverable(err))

	var ce *bcerrors.CheckError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, bundleCheck, ce.Details["command"])
	assert.Equal(t, "4", ce.Details["exit_code"])
	assert.Equal(t, "boom", ce.Details["output"])
}

func TestBundleVerifier_GemfileErrorUsesEnv(t *testing.T) {
	t.Setenv("BUNDLE_GEMFILE", "/project/Gemfile")
	fake := runnertest.New().On(bundleCheck, runnertest.Response{ExitCode: 10, Stderr: "Could not locate Gemfile\n"})

	err := (&BundleVerifier{Runner: fake}).Verify(context.Background())

	var ce *bcerrors.CheckError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "/project/Gemfile", ce.Details["path"])
}

func TestBundleVerifier_CustomExecutable(t *testing.T) {
	fake := runnertest.New()
	v := &BundleVerifier{Runner: fake, Bundle: "bin/bundle"}

	require.NoError(t, v.Verify(context.Background()))
	assert.Equal(t, "bin/bundle check --dry-run", v.Command())
	assert.Equal(t, []string{"bin/bundle check --dry-run"}, fake.Calls())
}

func TestBundleVerifier_StartError(t *testing.T) {
	startErr := bcerrors.CommandNotFound("bundle", errors.New("executable file not found in $PATH"))
	fake := runnertest.New().On(bundleCheck, runnertest.Response{Err: startErr})

	err := (&BundleVerifier{Runner: fake}).Verify(context.Background())
	assert.ErrorIs(t, err, bcerrors.ErrCommand)
	assert.False(t, bcerrors.IsRecoverable(err))
}

func TestRubyVerifier_Verify(t *testing.T) {
	script := (&RubyVerifier{}).command().String()

	tests := []struct {
		name     string
		resp     runnertest.Response
		wantKind error
	}{
		{"satisfied", runnertest.Response{}, nil},
		{"gem not found", runnertest.Response{ExitCode: 7, Stderr: "Could not find gem 'rake'\n"}, bcerrors.ErrGemNotFound},
		{"git error", runnertest.Response{ExitCode: 11}, bcerrors.ErrFetch},
		{"bundler missing", runnertest.Response{ExitCode: 3, Stderr: "cannot load such file -- bundler\n"}, bcerrors.ErrVerify},
		{"other exception", runnertest.Response{ExitCode: 1, Stderr: "Gemfile syntax error\n"}, bcerrors.ErrVerify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := runnertest.New().On(script, tt.resp)
			v := &RubyVerifier{Runner: fake}

			err := v.Verify(context.Background())
			if tt.wantKind == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantKind)
			}
			require.Len(t, fake.Commands(), 1)

			cmd := fake.Commands()[0]
			assert.Equal(t, "ruby", cmd.Name)
			assert.Equal(t, "-e", cmd.Args[0])
			assert.Contains(t, cmd.Args[1], "Bundler.setup")
		})
	}
}

func TestRubyVerifier_BundlerMissingHint(t *testing.T) {
	script := (&RubyVerifier{}).command().String()
	fake := runnertest.New().On(script, runnertest.Response{ExitCode: 3})

	err := (&RubyVerifier{Runner: fake}).Verify(context.Background())

	var ce *bcerrors.CheckError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Details["hint"], "gem install bundler")
	assert.Equal(t, "ruby -e <Bundler.setup script>", ce.Details["command"])
}

// blockingRunner waits for the context to end.
type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, _ runner.Command) (*runner.Result, error) {
	<-ctx.Done()
	return &runner.Result{ExitCode: -1}, nil
}

func TestVerify_Timeout(t *testing.T) {
	v := &BundleVerifier{Runner: blockingRunner{}, Timeout: 10 * time.Millisecond}

	err := v.Verify(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, bcerrors.ErrVerify)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, bcerrors.IsRecoverable(err))
}

func TestNewVerifier(t *testing.T) {
	cmds := config.CommandsConfig{Bundle: "b", Ruby: "r", Rbenv: "rbenv", Git: "git"}
	fake := runnertest.New()

	v, err := NewVerifier(config.VerifyMethodBundle, fake, cmds, "/p", time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &BundleVerifier{}, v)
	assert.Equal(t, "b check --dry-run", v.Command())

	v, err = NewVerifier("", fake, cmds, "/p", 0)
	require.NoError(t, err)
	assert.IsType(t, &BundleVerifier{}, v)

	v, err = NewVerifier(config.VerifyMethodRuby, fake, cmds, "/p", 0)
	require.NoError(t, err)
	assert.IsType(t, &RubyVerifier{}, v)
	assert.Equal(t, "r -e <Bundler.setup script>", v.Command())

	_, err = NewVerifier("gem", fake, cmds, "/p", 0)
	assert.ErrorIs(t, err, bcerrors.ErrConfig)
}
