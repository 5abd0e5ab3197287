package protocol

// SessionStatus is the final outcome of a test session as observed
// by the worker.
type SessionStatus string

const (
	// All tests executed and the runner exited zero.
	SessionPassed SessionStatus = "passed"

	// The runner ran to completion but exited non-zero.
	SessionFailed SessionStatus = "failed"

	// The session could not be executed at all, e.g. because the
	// environment snapshot could not be provisioned.
	SessionError SessionStatus = "error"
)

// Should return true if the session must be counted as a failure
func (status SessionStatus) IsFailure() bool {
	switch status {
	case SessionFailed, SessionError:
		return true
	default:
		return false
	}
}
