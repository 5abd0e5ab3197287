package worker

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/rig"
	"github.com/hildist/hildist/pkg/utils"
)

type Config struct {
	// Base URL of the coordinator service.
	ApiURL string `mapstructure:"api_url"`

	// Network interfaces considered for the worker identity,
	// in priority order.
	Interfaces []string `mapstructure:"interfaces"`

	// How often to ask the coordinator for a session.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// How often to report liveness to the coordinator.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// Command line prefix used to execute a session. The worker and
	// session identities are appended as arguments.
	Runner []string `mapstructure:"runner"`

	// Upper bound on the size of a downloaded environment archive.
	MaxEnvSize string `mapstructure:"max_env_size"`

	// Directory in which per-session work directories are created.
	// Empty means the system temp directory.
	WorkDir string `mapstructure:"work_dir"`
}

const (
	DefaultApiURL            = "http://localhost:8000"
	DefaultPollInterval      = time.Second
	DefaultHeartbeatInterval = 10 * time.Second
	DefaultMaxEnvSize        = "1G"
)

var DefaultRunner = []string{"uv", "run", "--isolated", "pytest"}

// Checks if the worker configuration is valid.
func (c *Config) Validate() error {
	if c.ApiURL == "" {
		return errors.New("A coordinator API URL is required")
	}

	if _, err := url.Parse(c.ApiURL); err != nil {
		return errors.New("The coordinator API URL is not a valid URI")
	}

	if len(c.Interfaces) == 0 {
		c.Interfaces = rig.DefaultInterfaces
	}

	if c.PollInterval <= 0 {
		return errors.New("The session poll interval must be greater than zero")
	}

	if c.HeartbeatInterval <= 0 {
		return errors.New("The heartbeat interval must be greater than zero")
	}

	if len(c.Runner) == 0 {
		return errors.New("A session runner command is required")
	}

	if _, err := c.MaxEnvBytes(); err != nil {
		return errors.New("The environment size limit is not a valid size")
	}

	return nil
}

// MaxEnvBytes returns the environment size limit in bytes. Zero means
// no limit.
func (c *Config) MaxEnvBytes() (int64, error) {
	if c.MaxEnvSize == "" {
		return 0, nil
	}
	return utils.ParseSize(c.MaxEnvSize)
}

func (c *Config) Log() {
	log.Info("Worker configuration:")
	log.Infof("  api_url = %s", c.ApiURL)
	log.Infof("  interfaces = %s", strings.Join(c.Interfaces, ","))
	log.Infof("  poll_interval = %v", c.PollInterval)
	log.Infof("  heartbeat_interval = %v", c.HeartbeatInterval)
	log.Infof("  runner = %s", strings.Join(c.Runner, " "))
	log.Infof("  max_env_size = %s", c.MaxEnvSize)
	log.Infof("  work_dir = %s", c.WorkDir)
}
