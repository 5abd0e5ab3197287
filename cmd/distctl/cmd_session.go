package main

import "github.com/spf13/cobra"

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Commands to inspect test sessions",
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
