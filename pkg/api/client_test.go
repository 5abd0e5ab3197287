package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hildist/hildist/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollSessionNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/worker/aabbccddeeff/session", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	session, ok, err := client.PollSession("aabbccddeeff")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, session)
}

func TestPollSessionAssigned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(protocol.SessionResponse{SessionID: "s-42"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	session, ok, err := client.PollSession("aabbccddeeff")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s-42", session.SessionID)
}

func TestPollSessionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(protocol.ErrorResponse{Detail: "Worker aabbccddeeff is unconfigured"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, ok, err := client.PollSession("aabbccddeeff")
	assert.False(t, ok)
	require.Error(t, err)

	statusErr, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Status)
	assert.Equal(t, "Worker aabbccddeeff is unconfigured", statusErr.Details())
}

func TestRegisterWorker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/worker/register", r.URL.Path)

		request := protocol.RegisterRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "aabbccddeeff", request.WorkerID)

		json.NewEncoder(w).Encode(protocol.RegisterResponse{
			WorkerID: request.WorkerID,
			PetName:  "bouncy-otter",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	response, err := client.RegisterWorker("aabbccddeeff")
	require.NoError(t, err)
	assert.Equal(t, "bouncy-otter", response.PetName)
}

func TestHeartbeat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/worker/aabbccddeeff/heartbeat", r.URL.Path)
		json.NewEncoder(w).Encode(protocol.SuccessResponse{Message: "Heartbeat received"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	assert.NoError(t, client.Heartbeat("aabbccddeeff"))
}

func TestDownloadEnv(t *testing.T) {
	content := []byte("PK\x03\x04 pretend zip")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/worker/w1/session/s-42/env", r.URL.Path)
		w.Write(content)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	body, err := client.DownloadEnv("w1", "s-42")
	require.NoError(t, err)
	assert.Equal(t, content, body)
}

func TestDownloadEnvMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(protocol.ErrorResponse{Detail: "Environment file not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.DownloadEnv("w1", "s-42")
	require.Error(t, err)

	statusErr, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Contains(t, statusErr.Error(), "Environment file not found")
}

func TestUploadArtifact(t *testing.T) {
	content := []byte("=== test session output ===\n1 passed\n")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/worker/session/s-42/artifacts", r.URL.Path)

		request := protocol.ArtifactUploadRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "w1", request.WorkerID)

		decoded, err := base64.StdEncoding.DecodeString(request.Content)
		require.NoError(t, err)
		assert.Equal(t, content, decoded)

		json.NewEncoder(w).Encode(protocol.SuccessResponse{Message: "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	assert.NoError(t, client.UploadArtifact("s-42", "w1", content))
}

func TestGetJSONNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// The output value must not be clobbered by an empty body.
	out := protocol.SessionResponse{SessionID: "sentinel"}
	status, err := client.GetJSON("/worker/w1/session", &out)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, "sentinel", out.SessionID)
}

func TestGetRawTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	_, _, err := client.GetRaw("/worker/list")
	assert.Error(t, err)
}

func TestBaseURLTrimmed(t *testing.T) {
	client := NewClient("http://localhost:8000/")
	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}
