package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftscan/driftscan/internal/engine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the driftscan version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("driftscan %s\n", engine.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
