package lock

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/utils"
)

// sshExitConnFailure is what the ssh client itself exits with when it
// cannot reach the host, as opposed to the remote command failing.
const sshExitConnFailure = 255

// SSHHost keeps the lock artifact on a remote rig controller reached
// over ssh. Creation relies on the shell refusing to overwrite an
// existing file under set -C, which is atomic on the remote side.
type SSHHost struct {
	host string
}

func NewSSHHost(host string) *SSHHost {
	return &SSHHost{host: host}
}

func (h *SSHHost) command(script string) *exec.Cmd {
	return exec.Command("ssh",
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=10",
		h.host, script)
}

func (h *SSHHost) CreateExclusive(path string, content []byte) error {
	// The first redirect is silenced so that a plain "file exists"
	// does not spam stderr. Anything else retries the redirect with
	// stderr attached so the real error reaches us.
	script := fmt.Sprintf(
		"set -C\n"+
			"if printf '%%s' %s > %s 2>/dev/null; then\n"+
			"  echo acquired\n"+
			"elif test -e %s; then\n"+
			"  echo held\n"+
			"else\n"+
			"  printf '%%s' %s > %s\n"+
			"fi\n",
		shellQuote(string(content)), remotePath(path),
		remotePath(path),
		shellQuote(string(content)), remotePath(path))

	cmd := h.command(script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to create lock artifact on %s: %w (%s)",
			h.host, err, strings.TrimSpace(string(output)))
	}

	switch strings.TrimSpace(string(output)) {
	case "acquired":
		return nil
	case "held":
		return utils.ErrLockHeld
	default:
		return fmt.Errorf("unexpected reply from %s: %s", h.host, strings.TrimSpace(string(output)))
	}
}

func (h *SSHHost) ReadFile(path string) ([]byte, error) {
	cmd := h.command("cat " + remotePath(path))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() != sshExitConnFailure {
			log.Debugf("Failed to read %s on %s: %s", path, h.host, detail)
			return nil, fmt.Errorf("%w: %s on %s", utils.ErrNotFound, path, h.host)
		}
		return nil, fmt.Errorf("failed to reach %s: %w (%s)", h.host, err, detail)
	}

	return output, nil
}

func (h *SSHHost) Remove(path string) error {
	cmd := h.command("rm -f " + remotePath(path))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove lock artifact on %s: %w (%s)",
			h.host, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Push copies a local directory into destDir on the controller,
// keeping the directory's name. Used to stage a test workspace
// before a locked run.
func (h *SSHHost) Push(src, destDir string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("sync source: %w", err)
	}

	mkdir := h.command("mkdir -p " + remotePath(destDir))
	if output, err := mkdir.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create %s on %s: %w (%s)",
			destDir, h.host, err, strings.TrimSpace(string(output)))
	}

	scp := exec.Command("scp",
		"-q", "-r",
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=10",
		src, h.host+":"+destDir)
	if output, err := scp.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w (%s)",
			src, h.host, err, strings.TrimSpace(string(output)))
	}

	log.Debugf("Pushed %s to %s:%s", src, h.host, destDir)
	return nil
}

// shellQuote wraps a string in single quotes so it survives the
// remote shell untouched.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// remotePath quotes a path for the remote shell. A leading ~ is kept
// outside the quotes so it still expands against the remote home.
func remotePath(path string) string {
	if path == "~" {
		return "$HOME"
	}
	if after, ok := strings.CutPrefix(path, "~/"); ok {
		return `"$HOME"/` + shellQuote(after)
	}
	return shellQuote(path)
}
