// Package lock implements mutual exclusion for shared test rigs.
// The lock is a file on the rig controller whose content names the
// holder, created atomically so that at most one client can win a
// race for it. There is no lease or expiry: a lock left behind by a
// crashed holder must be removed by hand, see ForceRelease.
package lock

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/utils"
)

const (
	DefaultRetryInterval = 2 * time.Second
	DefaultMaxAttempts   = 60
	DefaultFlockTimeout  = 120 * time.Second
)

type Config struct {
	// Path of the lock artifact on the host.
	Path string

	// Identity written into the artifact, typically user@host.
	Identity string

	// Delay between acquisition attempts.
	RetryInterval time.Duration

	// Number of attempts before giving up.
	MaxAttempts int
}

type RigLock struct {
	host     Host
	path     string
	identity string
	retry    time.Duration
	attempts int
}

func New(host Host, config Config) *RigLock {
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultRetryInterval
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}

	return &RigLock{
		host:     host,
		path:     config.Path,
		identity: config.Identity,
		retry:    config.RetryInterval,
		attempts: config.MaxAttempts,
	}
}

// Acquire takes the lock, waiting for the current holder to release
// it. Each failed attempt reports who holds the lock. Once the
// attempt budget is exhausted the last observed holder is named in
// the returned error.
func (l *RigLock) Acquire() error {
	for attempt := 1; ; attempt++ {
		err := l.host.CreateExclusive(l.path, []byte(l.identity))
		if err == nil {
			log.Infof("Acquired rig lock %s as %s", l.path, l.identity)
			return nil
		}
		if !errors.Is(err, utils.ErrLockHeld) {
			return err
		}

		holder, err := l.Holder()
		if err != nil {
			// The holder may have released between our attempt and
			// the read. The next attempt will settle it.
			holder = "unknown"
		}

		if attempt >= l.attempts {
			return fmt.Errorf("%w: gave up after %d attempts, held by %s", utils.ErrLockTimeout, attempt, holder)
		}

		log.Infof("Rig is locked by %s, retrying in %v (attempt %d/%d)", holder, l.retry, attempt, l.attempts)
		time.Sleep(l.retry)
	}
}

// VerifyHeld confirms the lock artifact still exists and still names
// us. Call it before doing anything destructive to the rig.
func (l *RigLock) VerifyHeld() error {
	content, err := l.host.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrLockStolen, err)
	}

	holder := strings.TrimSpace(string(content))
	if holder != l.identity {
		return fmt.Errorf("%w: lock now names %s", utils.ErrLockStolen, holder)
	}

	return nil
}

// Release verifies ownership and removes the lock artifact.
func (l *RigLock) Release() error {
	if err := l.VerifyHeld(); err != nil {
		return err
	}

	if err := l.host.Remove(l.path); err != nil {
		return fmt.Errorf("failed to remove lock artifact: %w", err)
	}

	log.Infof("Released rig lock %s", l.path)
	return nil
}

// ForceRelease removes the lock artifact regardless of who owns it.
// Manual recovery for locks left behind by a crashed holder.
func (l *RigLock) ForceRelease() error {
	return l.host.Remove(l.path)
}

// Holder returns the identity currently named in the lock artifact.
func (l *RigLock) Holder() (string, error) {
	content, err := l.host.ReadFile(l.path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

// LocalIdentity returns the user@host identity written into lock
// artifacts acquired from this machine.
func LocalIdentity() string {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return username + "@" + hostname
}
