package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List the scenes of the simulated host",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		for i, s := range cfg.Scenes {
			marker := " "
			if i == cfg.ActiveScene {
				marker = "*"
			}
			fmt.Printf("%s %2d  %-16s load %-8s activate %s\n", marker, i, s.Name, s.LoadTime, s.ActivationTime)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenesCmd)
}
