//go:build !windows

package worker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/protocol"
	"github.com/hildist/hildist/pkg/utils"
)

// The runner sees the appended identity flags as positional
// parameters, $1 is the worker id and $3 the session id.
func TestSessionExecutesRunnerInEnvDir(t *testing.T) {
	c, client := newTestCoordinator(t)
	c.SetDefaultEnv(envZip(t, map[string]string{"conftest.py": "import pytest\n"}))

	config := testConfig(client.BaseURL())
	config.WorkDir = t.TempDir()
	config.Runner = []string{"sh", "-c", `cat conftest.py; printf 'worker=%s session=%s' "$1" "$3"`}

	session := newSession(afero.NewOsFs(), client, config, "aabbccddeeff", "s-1")
	status, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.SessionPassed, status)

	content, err := c.Artifact("s-1", "aabbccddeeff")
	require.NoError(t, err)
	assert.Contains(t, string(content), "import pytest")
	assert.Contains(t, string(content), "worker=aabbccddeeff session=s-1")

	entries, err := os.ReadDir(config.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSessionPropagatesExitCode(t *testing.T) {
	c, client := newTestCoordinator(t)
	c.SetDefaultEnv(envZip(t, map[string]string{"conftest.py": ""}))

	config := testConfig(client.BaseURL())
	config.WorkDir = t.TempDir()
	config.Runner = []string{"sh", "-c", "echo boom; exit 3"}

	session := newSession(afero.NewOsFs(), client, config, "aabbccddeeff", "s-1")
	status, err := session.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrRunnerFailed)
	assert.Equal(t, protocol.SessionFailed, status)
	assert.Equal(t, 3, utils.ExitCode(err))

	// The captured output is uploaded even for a failed session.
	content, err := c.Artifact("s-1", "aabbccddeeff")
	require.NoError(t, err)
	assert.Contains(t, string(content), "boom")
}

// A failed session must not take down the agent, the next queued
// session still runs.
func TestWorkerSurvivesFailedSession(t *testing.T) {
	c, client := newTestCoordinator(t)
	c.SetDefaultEnv(envZip(t, map[string]string{"conftest.py": ""}))

	config := testConfig(client.BaseURL())
	config.WorkDir = t.TempDir()
	config.Runner = []string{"sh", "-c", `echo ran $3; [ "$3" != s-fail ]`}
	require.NoError(t, config.Validate())

	worker := NewWorker(afero.NewOsFs(), client, config, "aabbccddeeff")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	// Let the agent idle through a few empty polls before queueing
	// work, then both sessions run in order.
	time.Sleep(5 * config.PollInterval)
	c.AddSession("s-fail", nil)
	c.AddSession("s-pass", nil)

	require.Eventually(t, func() bool {
		_, err := c.Artifact("s-pass", "aabbccddeeff")
		return err == nil
	}, 10*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)

	content, err := c.Artifact("s-fail", "aabbccddeeff")
	require.NoError(t, err)
	assert.Contains(t, string(content), "ran s-fail")

	content, err = c.Artifact("s-pass", "aabbccddeeff")
	require.NoError(t, err)
	assert.Contains(t, string(content), "ran s-pass")
}

func TestWorkerStopsOnPollRejection(t *testing.T) {
	_, client := newTestCoordinator(t)

	config := testConfig(client.BaseURL())
	config.WorkDir = t.TempDir()

	// Never registered with the coordinator, the first poll is
	// rejected and the agent gives up.
	worker := &Worker{
		fs:       afero.NewOsFs(),
		client:   client,
		config:   config,
		workerID: "intruder",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := worker.serve(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistrationFailureIsFatal(t *testing.T) {
	config := testConfig("http://127.0.0.1:1")
	config.WorkDir = t.TempDir()

	worker := NewWorker(afero.NewOsFs(), api.NewClient("http://127.0.0.1:1"), config, "aabbccddeeff")
	assert.Error(t, worker.Run(context.Background()))
}
