package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/coordinator"
	"github.com/hildist/hildist/pkg/protocol"
	"github.com/hildist/hildist/pkg/utils"
)

func envZip(t *testing.T, files map[string]string) []byte {
	buffer := bytes.Buffer{}
	writer := zip.NewWriter(&buffer)
	for name, content := range files {
		file, err := writer.Create(name)
		require.NoError(t, err)
		_, err = file.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buffer.Bytes()
}

func testConfig(url string) *Config {
	return &Config{
		ApiURL:            url,
		PollInterval:      5 * time.Millisecond,
		HeartbeatInterval: 5 * time.Millisecond,
		Runner:            []string{"true"},
		WorkDir:           "/work",
	}
}

func newTestCoordinator(t *testing.T) (*coordinator.Coordinator, *api.Client) {
	c := coordinator.NewCoordinator()
	server := httptest.NewServer(coordinator.NewHttpHandler(c))
	t.Cleanup(server.Close)
	return c, api.NewClient(server.URL)
}

func TestProvisionExtractsEnvironment(t *testing.T) {
	c, client := newTestCoordinator(t)
	c.SetDefaultEnv(envZip(t, map[string]string{
		"conftest.py":         "import pytest\n",
		"tests/test_radio.py": "def test_tx(): pass\n",
	}))

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0755))

	session := newSession(fs, client, testConfig(client.BaseURL()), "aabbccddeeff", "s-1")
	require.NoError(t, session.provision())

	content, err := afero.ReadFile(fs, session.EnvDir+"/conftest.py")
	require.NoError(t, err)
	assert.Equal(t, "import pytest\n", string(content))

	content, err = afero.ReadFile(fs, session.EnvDir+"/tests/test_radio.py")
	require.NoError(t, err)
	assert.Equal(t, "def test_tx(): pass\n", string(content))
}

func TestProvisionRejectsOversizedEnvironment(t *testing.T) {
	c, client := newTestCoordinator(t)
	c.SetDefaultEnv(envZip(t, map[string]string{"conftest.py": "import pytest\n"}))

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0755))

	config := testConfig(client.BaseURL())
	config.MaxEnvSize = "16B"

	session := newSession(fs, client, config, "aabbccddeeff", "s-1")
	err := session.provision()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 16B")
}

func TestRunCleansUpOnProvisionFailure(t *testing.T) {
	c, client := newTestCoordinator(t)
	c.SetDefaultEnv([]byte("not an archive at all"))

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0755))

	session := newSession(fs, client, testConfig(client.BaseURL()), "aabbccddeeff", "s-1")
	status, err := session.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrParse)
	assert.Equal(t, protocol.SessionError, status)
	assert.True(t, status.IsFailure())

	// The work directory must be gone even though provisioning failed.
	entries, err := afero.ReadDir(fs, "/work")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunFailsWhenEnvMissing(t *testing.T) {
	_, client := newTestCoordinator(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0755))

	session := newSession(fs, client, testConfig(client.BaseURL()), "aabbccddeeff", "s-1")
	status, err := session.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no environment for session")
	assert.Equal(t, protocol.SessionError, status)

	entries, err := afero.ReadDir(fs, "/work")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
