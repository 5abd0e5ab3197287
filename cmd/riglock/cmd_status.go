package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/utils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who holds the rig lock",
	Run: func(cmd *cobra.Command, args []string) {
		holder, err := newLock().Holder()
		if errors.Is(err, utils.ErrNotFound) {
			fmt.Println("unlocked")
			return
		}
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(holder)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
