package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/rig"
	"github.com/hildist/hildist/pkg/worker"
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "HIL test distribution rig agent",
	Run: func(cmd *cobra.Command, args []string) {
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

		// Load worker configuration from file or environment.
		config, err := LoadConfig()
		if err != nil {
			log.Fatal(err)
		}

		if err := config.Validate(); err != nil {
			log.Fatal(err)
		}
		config.Log()

		rig.CollectFacts().Log()

		workerID, err := rig.WorkerID(config.Interfaces)
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("Worker identity is %s (%s)", workerID, rig.PetName(workerID))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agent := worker.NewWorker(afero.NewOsFs(), api.NewClient(config.ApiURL), config, workerID)
		if err := agent.Run(ctx); err != nil {
			log.Fatal(err)
		}
	},
}

func main() {
	rootCmd.Flags().StringP("api-url", "a", worker.DefaultApiURL, "Coordinator API URL")
	rootCmd.Flags().StringSliceP("interface", "i", rig.DefaultInterfaces, "Identity interface candidate (repeatable)")
	rootCmd.Flags().Duration("poll-interval", worker.DefaultPollInterval, "Session poll interval")
	rootCmd.Flags().Duration("heartbeat-interval", worker.DefaultHeartbeatInterval, "Heartbeat interval")
	rootCmd.Flags().StringSlice("runner", worker.DefaultRunner, "Session runner command")
	rootCmd.Flags().String("max-env-size", worker.DefaultMaxEnvSize, "Maximum environment archive size")
	rootCmd.Flags().String("work-dir", "", "Directory for session work directories")
	rootCmd.Flags().CountP("verbose", "v", "Verbosity (repeatable)")

	viper.BindPFlag("api_url", rootCmd.Flags().Lookup("api-url"))
	viper.BindPFlag("interfaces", rootCmd.Flags().Lookup("interface"))
	viper.BindPFlag("poll_interval", rootCmd.Flags().Lookup("poll-interval"))
	viper.BindPFlag("heartbeat_interval", rootCmd.Flags().Lookup("heartbeat-interval"))
	viper.BindPFlag("runner", rootCmd.Flags().Lookup("runner"))
	viper.BindPFlag("max_env_size", rootCmd.Flags().Lookup("max-env-size"))
	viper.BindPFlag("work_dir", rootCmd.Flags().Lookup("work-dir"))
	viper.SetEnvPrefix("httpdist")
	viper.AutomaticEnv()

	viper.SetConfigName("worker.yaml")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/hildist/")
	viper.AddConfigPath("$HOME/.config/hildist")
	viper.AddConfigPath(".")
	viper.ReadInConfig()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
