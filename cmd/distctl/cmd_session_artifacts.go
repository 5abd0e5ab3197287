package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var sessionArtifactsCmd = &cobra.Command{
	Use:   "artifacts <session>",
	Short: "List the artifacts uploaded for a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		artifacts, err := NewApiClient().ListArtifacts(args[0])
		if err != nil {
			log.Fatal(err)
		}

		for _, artifact := range artifacts {
			fmt.Println(artifact)
		}
	},
}

func init() {
	sessionCmd.AddCommand(sessionArtifactsCmd)
}
