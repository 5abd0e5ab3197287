package api

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/hildist/hildist/pkg/protocol"
)

// RegisterWorker announces the worker to the coordinator. The
// coordinator assigns a pet name on first contact.
func (c *Client) RegisterWorker(workerID string) (*protocol.RegisterResponse, error) {
	request := protocol.RegisterRequest{WorkerID: workerID}
	response := protocol.RegisterResponse{}

	body, status, err := c.PostRaw("/worker/register", "application/json", mustMarshal(request))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, NewStatusError(status, body)
	}

	if err := unmarshal(body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Heartbeat reports liveness. Failures are returned to the caller
// but are not fatal to the agent.
func (c *Client) Heartbeat(workerID string) error {
	body, status, err := c.PostRaw(fmt.Sprintf("/worker/%s/heartbeat", workerID), "application/json", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return NewStatusError(status, body)
	}
	return nil
}

// PollSession asks the coordinator for the worker's current session.
// The second return value is false when no session is assigned yet.
func (c *Client) PollSession(workerID string) (*protocol.SessionResponse, bool, error) {
	body, status, err := c.GetRaw(fmt.Sprintf("/worker/%s/session", workerID))
	if err != nil {
		return nil, false, err
	}

	switch status {
	case http.StatusNoContent:
		return nil, false, nil
	case http.StatusOK:
		response := protocol.SessionResponse{}
		if err := unmarshal(body, &response); err != nil {
			return nil, false, err
		}
		return &response, true, nil
	default:
		return nil, false, NewStatusError(status, body)
	}
}

// DownloadEnv fetches the environment snapshot archive for a session.
func (c *Client) DownloadEnv(workerID, sessionID string) ([]byte, error) {
	body, status, err := c.GetRaw(fmt.Sprintf("/worker/%s/session/%s/env", workerID, sessionID))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, NewStatusError(status, body)
	}
	return body, nil
}

// UploadArtifact stores a file captured during a session with the
// coordinator, keyed by the uploading worker.
func (c *Client) UploadArtifact(sessionID, workerID string, content []byte) error {
	request := protocol.ArtifactUploadRequest{
		WorkerID: workerID,
		Content:  base64.StdEncoding.EncodeToString(content),
	}

	body, status, err := c.PostRaw(fmt.Sprintf("/worker/session/%s/artifacts", sessionID), "application/json", mustMarshal(request))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return NewStatusError(status, body)
	}
	return nil
}

// ListArtifacts returns the ids of the artifacts uploaded for a
// session.
func (c *Client) ListArtifacts(sessionID string) ([]string, error) {
	response := protocol.ArtifactListResponse{}

	body, status, err := c.GetRaw(fmt.Sprintf("/worker/session/%s/artifacts", sessionID))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, NewStatusError(status, body)
	}

	if err := unmarshal(body, &response); err != nil {
		return nil, err
	}
	return response.ArtifactIDs, nil
}

// ListWorkers returns all workers recently seen by the coordinator.
func (c *Client) ListWorkers() ([]protocol.WorkerInfo, error) {
	workers := []protocol.WorkerInfo{}

	body, status, err := c.GetRaw("/worker/list")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, NewStatusError(status, body)
	}

	if err := unmarshal(body, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// WorkerInfo returns the coordinator's view of a single worker.
func (c *Client) WorkerInfo(workerID string) (*protocol.WorkerInfo, error) {
	info := protocol.WorkerInfo{}

	body, status, err := c.GetRaw(fmt.Sprintf("/worker/%s/info", workerID))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, NewStatusError(status, body)
	}

	if err := unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UpdateWorker sets the pet name and capability tags of a worker.
func (c *Client) UpdateWorker(workerID string, request *protocol.UpdateWorkerRequest) error {
	body, status, err := c.PostRaw(fmt.Sprintf("/worker/%s/update", workerID), "application/json", mustMarshal(request))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return NewStatusError(status, body)
	}
	return nil
}
