package main

import (
	"github.com/spf13/cobra"

	"github.com/hildist/hildist/pkg/log"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release the rig lock",
	Run: func(cmd *cobra.Command, args []string) {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			log.Fatal(err)
		}

		l := newLock()
		if force {
			if err := l.ForceRelease(); err != nil {
				log.Fatal(err)
			}
			log.Info("Lock removed")
			return
		}

		if err := l.Release(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	releaseCmd.Flags().Bool("force", false, "Remove the lock even if someone else holds it")
	rootCmd.AddCommand(releaseCmd)
}
