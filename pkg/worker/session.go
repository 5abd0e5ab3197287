package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/protocol"
	"github.com/hildist/hildist/pkg/utils"
)

// Session is one assigned validation run. It owns an ephemeral work
// directory which never outlives the session.
type Session struct {
	WorkerID  string
	SessionID string

	// EnvDir is the extracted environment, the runner's working
	// directory. Valid after provisioning.
	EnvDir string

	fs     utils.Fs
	client *api.Client
	config *Config
	root   string
}

func newSession(fs utils.Fs, client *api.Client, config *Config, workerID, sessionID string) *Session {
	return &Session{
		WorkerID:  workerID,
		SessionID: sessionID,
		fs:        fs,
		client:    client,
		config:    config,
	}
}

// Run provisions the session environment, executes the runner in it
// and uploads the captured output. The work directory is removed no
// matter how the session ends.
func (s *Session) Run(ctx context.Context) (protocol.SessionStatus, error) {
	started := time.Now()
	defer s.cleanup()

	if err := s.provision(); err != nil {
		return protocol.SessionError, err
	}

	err := s.execute(ctx)

	log.Infof("Executed test session %s in %.2fs", s.SessionID, time.Since(started).Seconds())

	if err != nil {
		return protocol.SessionFailed, err
	}
	return protocol.SessionPassed, nil
}

func (s *Session) provision() error {
	root, err := afero.TempDir(s.fs, s.config.WorkDir, "hildist-")
	if err != nil {
		return fmt.Errorf("failed to create session work directory: %w", err)
	}
	s.root = root

	env, err := s.client.DownloadEnv(s.WorkerID, s.SessionID)
	if err != nil {
		return err
	}

	if limit, _ := s.config.MaxEnvBytes(); limit > 0 && int64(len(env)) > limit {
		return fmt.Errorf("environment archive is %s, limit is %s",
			utils.HumanByteSize(int64(len(env))), s.config.MaxEnvSize)
	}

	archive := filepath.Join(root, "env.archive")
	if err := afero.WriteFile(s.fs, archive, env, 0644); err != nil {
		return fmt.Errorf("failed to write environment archive: %w", err)
	}

	if digest, err := utils.Sha1File(s.fs, archive); err == nil {
		log.Debugf("Downloaded environment for session %s, %s, sha1 %s",
			s.SessionID, utils.HumanByteSize(int64(len(env))), digest)
	}

	s.EnvDir = filepath.Join(root, "env")
	if err := s.fs.MkdirAll(s.EnvDir, 0755); err != nil {
		return fmt.Errorf("failed to create environment directory: %w", err)
	}

	if err := utils.ExtractArchive(s.fs, archive, s.EnvDir); err != nil {
		return fmt.Errorf("failed to extract environment archive: %w", err)
	}

	return nil
}

func (s *Session) execute(ctx context.Context) error {
	args := append(append([]string{}, s.config.Runner...),
		"--httpdist-worker-id", s.WorkerID,
		"--httpdist-session-id", s.SessionID)

	var output bytes.Buffer
	done, proc, err := utils.RunOptions(s.EnvDir, &output, args...)
	if err != nil {
		return fmt.Errorf("failed to start session runner: %w", err)
	}

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		log.Info("Sending interrupt signal to session runner")
		if err := proc.Signal(os.Interrupt); err != nil {
			log.Debug(err)
		}
		runErr = <-done
	}

	s.uploadArtifacts(output.Bytes())

	if runErr != nil {
		return fmt.Errorf("%w: %w", utils.ErrRunnerFailed, runErr)
	}
	return nil
}

// uploadArtifacts sends the captured runner output to the
// coordinator. Best effort, the session verdict stands either way.
func (s *Session) uploadArtifacts(content []byte) {
	if len(content) == 0 {
		return
	}
	if err := s.client.UploadArtifact(s.SessionID, s.WorkerID, content); err != nil {
		log.Warnf("Failed to upload artifacts for session %s: %v", s.SessionID, err)
	}
}

func (s *Session) cleanup() {
	if s.root == "" {
		return
	}
	if err := s.fs.RemoveAll(s.root); err != nil {
		log.Warnf("Failed to remove session work directory %s: %v", s.root, err)
	}
}
