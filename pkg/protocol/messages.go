// Package protocol defines the JSON messages exchanged with the
// coordination service.
package protocol

type RegisterRequest struct {
	WorkerID string `json:"worker_id"`
}

type RegisterResponse struct {
	WorkerID string `json:"worker_id"`
	PetName  string `json:"pet_name"`
}

// SessionResponse is returned by the session poll endpoint when a
// session has been assigned to the worker.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// ErrorResponse is the body of any non-2xx coordinator response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type WorkerInfo struct {
	WorkerID string   `json:"worker_id"`
	PetName  string   `json:"pet_name"`
	Tags     []string `json:"tags"`
}

type UpdateWorkerRequest struct {
	PetName string   `json:"pet_name"`
	Tags    []string `json:"tags"`
}

// ArtifactUploadRequest carries a file captured during a session.
// Content is base64 encoded.
type ArtifactUploadRequest struct {
	WorkerID string `json:"worker_id"`
	Content  string `json:"content"`
}

type ArtifactListResponse struct {
	ArtifactIDs []string `json:"artifact_ids"`
}
