package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_SetupReceivesFlags(t *testing.T) {
	env := newTestEnv(t, hostRecorder(), false)
	var got []Options
	env.app.Setup = func(opts Options) error {
		got = append(got, opts)
		return nil
	}

	require.NoError(t, execute(t, env.app, "parse", "--config", "/tmp/t.yaml", "-v", "hello"))
	require.NoError(t, execute(t, env.app, "--confirm-critical=false", "parse", "hello"))
	env.app.In = strings.NewReader("exit\n")
	require.NoError(t, execute(t, env.app, "repl"))

	require.Len(t, got, 3)
	assert.Equal(t, "/tmp/t.yaml", got[0].ConfigPath)
	assert.True(t, got[0].Verbose)
	assert.Nil(t, got[0].ConfirmCritical)
	require.NotNil(t, got[1].ConfirmCritical)
	assert.False(t, *got[1].ConfirmCritical)
	assert.False(t, got[2].FullScreen, "no terminal attached")

	env.app.Setup = func(Options) error { return errors.New("bad config") }
	assert.ErrorContains(t, execute(t, env.app, "parse", "x"), "setup: bad config")
}
