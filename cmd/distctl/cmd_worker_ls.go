package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var workerListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered workers",
	Run: func(cmd *cobra.Command, args []string) {
		workers, err := NewApiClient().ListWorkers()
		if err != nil {
			log.Fatal(err)
		}

		workerCount := len(workers)
		workerPad := fmt.Sprint(len(fmt.Sprint(workerCount)))

		for index, worker := range workers {
			fmt.Printf("%"+workerPad+"d: %s (%s)\n",
				index+1,
				worker.WorkerID,
				worker.PetName,
			)

			if len(worker.Tags) > 0 {
				fmt.Printf("   tags: %s\n", strings.Join(worker.Tags, ", "))
			}
		}
	},
}

func init() {
	workerCmd.AddCommand(workerListCmd)
}
