package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sceneflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sceneflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sceneflow version %s\n", strings.TrimSpace(sceneflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
