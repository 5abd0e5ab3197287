package coordinator

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/protocol"
	"github.com/hildist/hildist/pkg/utils"
)

type CoordinatorTestSuite struct {
	suite.Suite
	coordinator *Coordinator
}

func (suite *CoordinatorTestSuite) SetupTest() {
	suite.coordinator = NewCoordinator()
}

func (suite *CoordinatorTestSuite) TestRegisterAssignsPetName() {
	info := suite.coordinator.Register("aabbccddeeff")
	assert.Equal(suite.T(), "aabbccddeeff", info.WorkerID)
	assert.Equal(suite.T(), "friendly-sloth", info.PetName)

	// Registration is idempotent, the pet name sticks.
	again := suite.coordinator.Register("aabbccddeeff")
	assert.Equal(suite.T(), info.PetName, again.PetName)
	assert.Len(suite.T(), suite.coordinator.Workers(), 1)
}

func (suite *CoordinatorTestSuite) TestAssignRequiresRegistration() {
	_, _, err := suite.coordinator.Assign("aabbccddeeff")
	assert.ErrorIs(suite.T(), err, utils.ErrNotFound)
}

func (suite *CoordinatorTestSuite) TestAssignPopsInOrder() {
	suite.coordinator.Register("aabbccddeeff")
	suite.coordinator.AddSession("s-1", nil)
	suite.coordinator.AddSession("s-2", nil)

	id, ok, err := suite.coordinator.Assign("aabbccddeeff")
	require.NoError(suite.T(), err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "s-1", id)

	id, ok, err = suite.coordinator.Assign("aabbccddeeff")
	require.NoError(suite.T(), err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "s-2", id)

	_, ok, err = suite.coordinator.Assign("aabbccddeeff")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *CoordinatorTestSuite) TestAddSessionMintsId() {
	first := suite.coordinator.AddSession("", nil)
	second := suite.coordinator.AddSession("", nil)
	assert.NotEmpty(suite.T(), first)
	assert.NotEmpty(suite.T(), second)
	assert.NotEqual(suite.T(), first, second)
}

func (suite *CoordinatorTestSuite) TestEnvFallsBackToDefault() {
	suite.coordinator.AddSession("s-1", []byte("own"))
	suite.coordinator.AddSession("s-2", nil)

	_, err := suite.coordinator.Env("s-2")
	assert.ErrorIs(suite.T(), err, utils.ErrNotFound)

	suite.coordinator.SetDefaultEnv([]byte("default"))

	env, err := suite.coordinator.Env("s-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []byte("own"), env)

	env, err = suite.coordinator.Env("s-2")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []byte("default"), env)
}

func (suite *CoordinatorTestSuite) TestHeartbeatRequiresRegistration() {
	assert.ErrorIs(suite.T(), suite.coordinator.Heartbeat("aabbccddeeff"), utils.ErrNotFound)

	suite.coordinator.Register("aabbccddeeff")
	assert.NoError(suite.T(), suite.coordinator.Heartbeat("aabbccddeeff"))
}

func (suite *CoordinatorTestSuite) TestUpdateWorker() {
	suite.coordinator.Register("aabbccddeeff")

	info, err := suite.coordinator.UpdateWorker("aabbccddeeff", protocol.UpdateWorkerRequest{
		PetName: "bench-3",
		Tags:    []string{"radio", "lab-west"},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "bench-3", info.PetName)
	assert.Equal(suite.T(), []string{"radio", "lab-west"}, info.Tags)

	// Empty fields leave the record untouched.
	info, err = suite.coordinator.UpdateWorker("aabbccddeeff", protocol.UpdateWorkerRequest{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "bench-3", info.PetName)

	_, err = suite.coordinator.UpdateWorker("intruder", protocol.UpdateWorkerRequest{})
	assert.ErrorIs(suite.T(), err, utils.ErrNotFound)
}

func (suite *CoordinatorTestSuite) TestArtifacts() {
	suite.coordinator.AddArtifact("s-1", "aabbccddeeff", []byte("output"))
	suite.coordinator.AddArtifact("s-1", "001a2b3c4d5e", []byte("more"))

	content, err := suite.coordinator.Artifact("s-1", "aabbccddeeff")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []byte("output"), content)

	assert.Equal(suite.T(), []string{"001a2b3c4d5e", "aabbccddeeff"}, suite.coordinator.ArtifactWorkers("s-1"))

	_, err = suite.coordinator.Artifact("s-1", "intruder")
	assert.ErrorIs(suite.T(), err, utils.ErrNotFound)
}

func TestCoordinator(t *testing.T) {
	suite.Run(t, &CoordinatorTestSuite{})
}

// The HTTP surface is exercised end to end through the same client
// the rig agent uses.
func TestHttpRoundTrip(t *testing.T) {
	coordinator := NewCoordinator()
	server := httptest.NewServer(NewHttpHandler(coordinator))
	defer server.Close()

	client := api.NewClient(server.URL)

	registration, err := client.RegisterWorker("aabbccddeeff")
	require.NoError(t, err)
	assert.Equal(t, "friendly-sloth", registration.PetName)

	_, ok, err := client.PollSession("aabbccddeeff")
	require.NoError(t, err)
	assert.False(t, ok)

	coordinator.SetDefaultEnv([]byte("archive"))
	coordinator.AddSession("s-1", nil)

	assigned, ok, err := client.PollSession("aabbccddeeff")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "s-1", assigned.SessionID)

	env, err := client.DownloadEnv("aabbccddeeff", "s-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("archive"), env)

	require.NoError(t, client.UploadArtifact("s-1", "aabbccddeeff", []byte("output")))
	content, err := coordinator.Artifact("s-1", "aabbccddeeff")
	require.NoError(t, err)
	assert.Equal(t, []byte("output"), content)

	artifacts, err := client.ListArtifacts("s-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"aabbccddeeff"}, artifacts)

	require.NoError(t, client.Heartbeat("aabbccddeeff"))

	require.NoError(t, client.UpdateWorker("aabbccddeeff", &protocol.UpdateWorkerRequest{PetName: "bench-3"}))
	info, err := client.WorkerInfo("aabbccddeeff")
	require.NoError(t, err)
	assert.Equal(t, "bench-3", info.PetName)

	workers, err := client.ListWorkers()
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, "aabbccddeeff", workers[0].WorkerID)

	// Unregistered workers are turned away with a detail message.
	_, _, err = client.PollSession("intruder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}
