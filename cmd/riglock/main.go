package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hildist/hildist/pkg/lock"
	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/utils"
)

type RiglockConfig struct {
	// Rig controller reached over ssh. Empty means the controller is
	// this machine and the lock lives on the local filesystem.
	ControllerHost string `mapstructure:"controller_host"`

	// Path of the lock artifact on the controller.
	LockPath string `mapstructure:"lock_path"`

	// Delay between acquisition attempts.
	RetryInterval time.Duration `mapstructure:"retry_interval"`

	// Acquisition attempts before giving up.
	MaxAttempts int `mapstructure:"max_attempts"`

	// Bound on the local flock wait.
	FlockTimeout time.Duration `mapstructure:"flock_timeout"`

	// Local directory staged onto the controller before a locked
	// run. Empty disables the sync step.
	SyncSource string `mapstructure:"sync_source"`

	// Controller directory synced sources are copied into.
	RemoteDir string `mapstructure:"remote_dir"`
}

var configData = RiglockConfig{}

var rootCmd = &cobra.Command{
	Use:   "riglock",
	Short: "Mutual exclusion for shared test rigs",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbosity, err := cmd.Flags().GetCount("verbose")
		if err != nil {
			log.Fatal(err)
		}
		switch {
		case verbosity >= 2:
			log.SetLevel(log.TraceLevel)
		case verbosity >= 1:
			log.SetLevel(log.DebugLevel)
		}

		viper.SetConfigName("riglock.yaml")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/hildist/")
		viper.AddConfigPath("$HOME/.config/hildist")
		viper.AddConfigPath(".")
		viper.ReadInConfig()

		viper.SetEnvPrefix("hil")
		viper.AutomaticEnv()

		config := RiglockConfig{}
		if err := utils.UnmarshalConfig(*viper.GetViper(), &config); err != nil {
			log.Fatal(err)
		}
		configData = config
	},
}

// newLock builds the lock against the configured controller. A
// configured host goes over ssh, otherwise the artifact lives on the
// local filesystem.
func newLock() *lock.RigLock {
	var host lock.Host
	if configData.ControllerHost != "" {
		host = lock.NewSSHHost(configData.ControllerHost)
	} else {
		host = lock.NewFsHost(afero.NewOsFs())
	}

	return lock.New(host, lock.Config{
		Path:          configData.LockPath,
		Identity:      lock.LocalIdentity(),
		RetryInterval: configData.RetryInterval,
		MaxAttempts:   configData.MaxAttempts,
	})
}

func main() {
	rootCmd.PersistentFlags().StringP("host", "H", "", "Rig controller host (user@host), empty means local")
	rootCmd.PersistentFlags().String("lock-path", "/tmp/hil-rig.lock", "Lock artifact path on the controller")
	rootCmd.PersistentFlags().Duration("retry-interval", lock.DefaultRetryInterval, "Delay between acquisition attempts")
	rootCmd.PersistentFlags().Int("max-attempts", lock.DefaultMaxAttempts, "Acquisition attempts before giving up")
	rootCmd.PersistentFlags().Duration("flock-timeout", lock.DefaultFlockTimeout, "Bound on the local flock wait")
	rootCmd.PersistentFlags().String("sync", "", "Local directory to copy to the controller before running")
	rootCmd.PersistentFlags().String("remote-dir", "~/hil", "Controller directory synced sources are copied into")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Verbosity (repeatable)")

	viper.BindPFlag("controller_host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("lock_path", rootCmd.PersistentFlags().Lookup("lock-path"))
	viper.BindPFlag("retry_interval", rootCmd.PersistentFlags().Lookup("retry-interval"))
	viper.BindPFlag("max_attempts", rootCmd.PersistentFlags().Lookup("max-attempts"))
	viper.BindPFlag("flock_timeout", rootCmd.PersistentFlags().Lookup("flock-timeout"))
	viper.BindPFlag("sync_source", rootCmd.PersistentFlags().Lookup("sync"))
	viper.BindPFlag("remote_dir", rootCmd.PersistentFlags().Lookup("remote-dir"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
