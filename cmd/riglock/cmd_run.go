package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hildist/hildist/pkg/lock"
	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/utils"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a command while holding the rig lock",
	Long: `Run a command while holding the rig lock.

The lock is acquired first, verified to still be ours, and released
again no matter how the command ends. The command's exit code is
propagated.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flock, err := cmd.Flags().GetBool("flock")
		if err != nil {
			log.Fatal(err)
		}

		var code int
		if flock {
			code, err = runFlocked(args)
		} else {
			code, err = runLocked(args)
		}
		if err != nil {
			log.Error(err)
		}
		os.Exit(code)
	},
}

func init() {
	runCmd.Flags().Bool("flock", false, "Use a local flock instead of the lock artifact")
	rootCmd.AddCommand(runCmd)
}

// runLocked runs the command under the artifact lock. The lock is
// released on every exit path, including a signaled child.
func runLocked(args []string) (int, error) {
	l := newLock()
	if err := l.Acquire(); err != nil {
		return 1, err
	}
	defer func() {
		if err := l.Release(); err != nil {
			log.Warnf("Failed to release rig lock: %v", err)
		}
	}()

	if err := l.VerifyHeld(); err != nil {
		return 1, err
	}

	if err := syncWorkspace(); err != nil {
		return 1, err
	}

	return execute(args)
}

// syncWorkspace stages the configured source directory onto the
// controller. Runs with the lock held so nobody else's run gets a
// half-copied workspace.
func syncWorkspace() error {
	if configData.SyncSource == "" {
		return nil
	}
	if configData.ControllerHost == "" {
		return errors.New("Syncing a workspace requires a controller host")
	}

	log.Infof("Syncing %s to %s:%s", configData.SyncSource, configData.ControllerHost, configData.RemoteDir)
	host := lock.NewSSHHost(configData.ControllerHost)
	return host.Push(configData.SyncSource, configData.RemoteDir)
}

// execute starts the command and forwards termination signals to it
// until it exits.
func execute(args []string) (int, error) {
	command := utils.NewCommand(args...)
	if err := command.Start(); err != nil {
		return 1, err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	done := make(chan error, 1)
	go func() {
		done <- command.Wait()
	}()

	for {
		select {
		case sig := <-signals:
			log.Infof("Forwarding %v to %s", sig, args[0])
			if err := command.Interrupt(); err != nil {
				log.Debug(err)
			}
		case err := <-done:
			if err != nil {
				return utils.ExitCode(err), err
			}
			return 0, nil
		}
	}
}
