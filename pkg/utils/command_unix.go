//go:build !windows

package utils

import (
	"io"
	"os"
	"os/exec"
	"syscall"
)

// Command wraps an interactive subprocess whose lifetime is managed
// by the caller. The process runs in its own group so that signals
// can be delivered to the whole tree.
type Command struct {
	cmd *exec.Cmd
}

func NewCommand(args ...string) *Command {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}
	return &Command{cmd: cmd}
}

func (c *Command) Start() error {
	return c.cmd.Start()
}

func (c *Command) Wait() error {
	return c.cmd.Wait()
}

// Interrupt sends SIGINT to the process group.
func (c *Command) Interrupt() error {
	return syscall.Kill(-c.GetPid(), syscall.SIGINT)
}

// Kill sends SIGKILL to the process group.
func (c *Command) Kill() error {
	return syscall.Kill(-c.GetPid(), syscall.SIGKILL)
}

func (c *Command) SetStderr(w io.Writer) {
	c.cmd.Stderr = w
}

func (c *Command) SetStdout(w io.Writer) {
	c.cmd.Stdout = w
}

func (c *Command) SetDir(dir string) {
	c.cmd.Dir = dir
}

func (c *Command) Args() []string {
	return c.cmd.Args
}

func (c *Command) GetPid() int {
	return c.cmd.Process.Pid
}

func (c *Command) Process() *os.Process {
	return c.cmd.Process
}
