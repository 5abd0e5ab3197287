// Package worker implements the rig agent. One agent runs per
// physical test rig, identified by the MAC address of the rig's
// primary network interface. The agent registers with the
// coordinator, reports liveness and executes assigned validation
// sessions one at a time.
package worker

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/protocol"
	"github.com/hildist/hildist/pkg/utils"
)

type Worker struct {
	fs       utils.Fs
	client   *api.Client
	config   *Config
	workerID string
}

func NewWorker(fs utils.Fs, client *api.Client, config *Config, workerID string) *Worker {
	return &Worker{
		fs:       fs,
		client:   client,
		config:   config,
		workerID: workerID,
	}
}

// Run registers with the coordinator and serves sessions until the
// context is canceled or the coordinator turns us away.
func (w *Worker) Run(ctx context.Context) error {
	registration, err := w.client.RegisterWorker(w.workerID)
	if err != nil {
		return err
	}
	log.Infof("Registered with coordinator as %s (%s)", w.workerID, registration.PetName)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return w.heartbeat(ctx)
	})
	eg.Go(func() error {
		return w.serve(ctx)
	})

	err = eg.Wait()
	log.Info("Terminating")
	return err
}

// heartbeat reports liveness on a fixed cadence. Liveness is best
// effort, a missed beat must never take down the agent.
func (w *Worker) heartbeat(ctx context.Context) error {
	ticker := time.NewTicker(w.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.client.Heartbeat(w.workerID); err != nil {
				log.Debugf("Heartbeat failed: %v", err)
			}
		}
	}
}

// serve polls the coordinator for assigned sessions and runs them
// sequentially. A failed session is reported and the loop carries on,
// a failed poll is fatal.
func (w *Worker) serve(ctx context.Context) error {
	spinner := utils.NewSpinner(os.Stdout, "Waiting for session")
	defer spinner.Clear()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			assigned, ok, err := w.client.PollSession(w.workerID)
			if err != nil {
				spinner.Clear()
				return err
			}
			if !ok {
				spinner.Tick()
				continue
			}

			spinner.Clear()
			if status, err := w.runSession(ctx, assigned.SessionID); status.IsFailure() {
				if ctx.Err() != nil {
					return nil
				}
				log.Errorf("Session %s %s: %v", assigned.SessionID, status, err)
				log.DebugError(err)
			}
		}
	}
}

func (w *Worker) runSession(ctx context.Context, sessionID string) (protocol.SessionStatus, error) {
	log.Infof("Accepted session %s", sessionID)
	return newSession(w.fs, w.client, w.config, w.workerID, sessionID).Run(ctx)
}
