package utils

import (
	"fmt"
)

var (
	ErrBadRequest   = fmt.Errorf("Bad request")
	ErrLockHeld     = fmt.Errorf("Lock is held by another user")
	ErrLockStolen   = fmt.Errorf("Lock is no longer held by us")
	ErrLockTimeout  = fmt.Errorf("Timed out waiting for lock")
	ErrNoInterface  = fmt.Errorf("No matching network interface found")
	ErrNotFound     = fmt.Errorf("Not found")
	ErrParse        = fmt.Errorf("Parse error")
	ErrRunnerFailed = fmt.Errorf("Test runner failed")
)

// Errors that carry additional diagnostic output beyond the message,
// typically captured stderr from a subprocess or a response body.
type DetailedError interface {
	error
	Details() string
}
