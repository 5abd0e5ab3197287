package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/hildist/hildist/pkg/protocol"
)

var workerUpdateCmd = &cobra.Command{
	Use:   "update <worker>",
	Short: "Set a worker's pet name or tags",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		petName, err := cmd.Flags().GetString("pet-name")
		if err != nil {
			log.Fatal(err)
		}

		tags, err := cmd.Flags().GetStringSlice("tag")
		if err != nil {
			log.Fatal(err)
		}

		if petName == "" && len(tags) == 0 {
			log.Fatal("nothing to update, pass --pet-name or --tag")
		}

		client := NewApiClient()
		workerID, err := resolveWorker(client, args[0])
		if err != nil {
			log.Fatal(err)
		}

		request := &protocol.UpdateWorkerRequest{PetName: petName}
		if len(tags) > 0 {
			request.Tags = tags
		}

		if err := client.UpdateWorker(workerID, request); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	workerUpdateCmd.Flags().String("pet-name", "", "New pet name")
	workerUpdateCmd.Flags().StringSlice("tag", nil, "Tag (repeatable), replaces existing tags")
	workerCmd.AddCommand(workerUpdateCmd)
}
