package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hildist/hildist/pkg/api"
	"github.com/hildist/hildist/pkg/rig"
)

var workerInfoCmd = &cobra.Command{
	Use:   "info <worker>",
	Short: "Show worker details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewApiClient()

		workerID, err := resolveWorker(client, args[0])
		if err != nil {
			log.Fatal(err)
		}

		info, err := client.WorkerInfo(workerID)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("id:       %s\n", info.WorkerID)
		fmt.Printf("pet name: %s\n", info.PetName)
		fmt.Printf("tags:     %s\n", strings.Join(info.Tags, ", "))
	},
}

// resolveWorker maps a pet name to its worker id. Anything that is
// neither a registered pet name nor shaped like one passes through as
// a worker id.
func resolveWorker(client *api.Client, name string) (string, error) {
	workers, err := client.ListWorkers()
	if err != nil {
		return "", err
	}

	for _, worker := range workers {
		if worker.PetName == name {
			return worker.WorkerID, nil
		}
	}

	if rig.LooksLikePetName(name) {
		return "", fmt.Errorf("no worker is named %s", name)
	}

	return name, nil
}

func init() {
	workerCmd.AddCommand(workerInfoCmd)
}
