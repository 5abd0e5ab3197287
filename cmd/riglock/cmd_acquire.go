package main

import (
	"github.com/spf13/cobra"

	"github.com/hildist/hildist/pkg/log"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Acquire the rig lock",
	Long: `Acquire the rig lock and leave it held.

The lock stays held until "riglock release" is run from the same
user and host. Prefer "riglock run" which releases by itself.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := newLock().Acquire(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(acquireCmd)
}
