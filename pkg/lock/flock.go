//go:build !windows

package lock

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/utils"
)

// FlockLock provides the same mutual exclusion for processes that run
// directly on the rig controller, using an advisory flock on a well
// known path instead of ssh round trips.
type FlockLock struct {
	path    string
	timeout time.Duration
	file    *os.File
}

func NewFlockLock(path string, timeout time.Duration) *FlockLock {
	if timeout <= 0 {
		timeout = DefaultFlockTimeout
	}
	return &FlockLock{path: path, timeout: timeout}
}

// Acquire polls for the flock until it is free or the timeout runs
// out. The lock file itself is never deleted, only the flock on it
// matters, so a crashed holder releases implicitly.
func (l *FlockLock) Acquire() error {
	file, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(l.timeout)
	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			l.file = file
			return nil
		}
		if err != unix.EWOULDBLOCK {
			file.Close()
			return fmt.Errorf("flock on %s failed: %w", l.path, err)
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			file.Close()
			return fmt.Errorf("%w: flock on %s still busy after %v", utils.ErrLockTimeout, l.path, l.timeout)
		}

		log.Debugf("Flock on %s is busy, retrying", l.path)
		time.Sleep(min(time.Second, remaining))
	}
}

func (l *FlockLock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	if closeErr := l.file.Close(); err == nil {
		err = closeErr
	}
	l.file = nil
	return err
}
