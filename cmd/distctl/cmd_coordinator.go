package main

import (
	"log"
	"net/http"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hildist/hildist/pkg/coordinator"
)

var coordinatorCmd = &cobra.Command{
	Use:   "coordinator",
	Short: "Run a development coordinator",
	Long: `Run a small in-memory coordinator.

Intended for rig bring-up and integration tests. Sessions named on
the command line are queued immediately and all of them serve the
same environment archive.`,
	Run: func(cmd *cobra.Command, args []string) {
		listen, err := cmd.Flags().GetString("listen")
		if err != nil {
			log.Fatal(err)
		}

		sessions, err := cmd.Flags().GetStringSlice("session")
		if err != nil {
			log.Fatal(err)
		}

		envPath, err := cmd.Flags().GetString("env")
		if err != nil {
			log.Fatal(err)
		}

		c := coordinator.NewCoordinator()

		if envPath != "" {
			env, err := afero.ReadFile(afero.NewOsFs(), envPath)
			if err != nil {
				log.Fatal(err)
			}
			c.SetDefaultEnv(env)
		}

		for _, session := range sessions {
			log.Printf("Queued session %s", c.AddSession(session, nil))
		}

		log.Printf("Listening on %s", listen)
		log.Fatal(http.ListenAndServe(listen, coordinator.NewHttpHandler(c)))
	},
}

func init() {
	coordinatorCmd.Flags().String("listen", ":8000", "Listen address")
	coordinatorCmd.Flags().StringSlice("session", nil, "Session id to queue (repeatable)")
	coordinatorCmd.Flags().String("env", "", "Environment archive served to sessions")
	rootCmd.AddCommand(coordinatorCmd)
}
