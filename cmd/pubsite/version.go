package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pubsite",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pubsite %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
