package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/hildist/hildist/pkg/log"
)

type commandError struct {
	message string
	details string
	code    int
}

func NewCmdError(message, details string, code int) error {
	return &commandError{
		message: message,
		details: details,
		code:    code,
	}
}

func (c *commandError) Details() string {
	return c.details
}

func (c *commandError) Error() string {
	return c.message
}

func (c *commandError) Code() int {
	return c.code
}

// ExitCode extracts the subprocess exit status from an error returned
// by Run and friends. Returns 0 for nil and -1 when the error does
// not carry a status, e.g. when the command never started.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return cmdErr.code
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

func Run(args ...string) (chan error, *os.Process, error) {
	return RunOptions("", nil, args...)
}

// RunOptions starts a command in its own process group, with cwd as
// working directory if non-empty. The returned channel yields the
// final status once the command exits. When output is non-nil it
// receives a copy of everything the command writes on either stream.
func RunOptions(cwd string, output io.Writer, args ...string) (chan error, *os.Process, error) {
	stderr := bytes.Buffer{}

	cmd := exec.Command(args[0], args[1:]...)
	if output != nil {
		cmd.Stdout = io.MultiWriter(os.Stdout, output)
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderr, output)
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}
	if cwd != "" {
		cmd.Dir = cwd
	}

	log.Info("Running", strings.Join(cmd.Args, " "))

	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	done := make(chan error)
	go func() {
		err := cmd.Wait()
		if err != nil {
			code := -1
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			}
			message := fmt.Sprintf("Command failed: %s (%v)", strings.Join(args, " "), err)
			log.Error(message)
			done <- NewCmdError(message, stderr.String(), code)
		}
		close(done)
	}()

	return done, cmd.Process, nil
}

func RunWait(args ...string) error {
	done, _, err := Run(args...)
	if err != nil {
		return err
	}
	return <-done
}

func RunWaitCwd(cwd string, args ...string) error {
	done, _, err := RunOptions(cwd, nil, args...)
	if err != nil {
		return err
	}
	return <-done
}
