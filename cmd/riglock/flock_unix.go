//go:build !windows

package main

import (
	"errors"

	"github.com/hildist/hildist/pkg/lock"
	"github.com/hildist/hildist/pkg/log"
)

// runFlocked runs the command under a local advisory flock. A crashed
// holder releases implicitly, so there is nothing to clean up and no
// holder identity to report.
func runFlocked(args []string) (int, error) {
	if configData.ControllerHost != "" {
		return 1, errors.New("The flock mode locks the local machine, a controller host cannot be set")
	}
	if configData.SyncSource != "" {
		return 1, errors.New("The flock mode runs in place, there is no controller to sync to")
	}

	l := lock.NewFlockLock(configData.LockPath, configData.FlockTimeout)
	if err := l.Acquire(); err != nil {
		return 1, err
	}
	defer func() {
		if err := l.Release(); err != nil {
			log.Warnf("Failed to release flock: %v", err)
		}
	}()

	return execute(args)
}
