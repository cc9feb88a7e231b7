package main

import (
	"os"

	"github.com/aretw0/sceneflow"
	"github.com/aretw0/sceneflow/internal/cli"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scene>",
	Short: "Transition to a scene behind a loading screen",
	Long: `Requests a transition to the given scene (name or build index), renders the
loading bar, and activates the scene when Enter is pressed once loading finished.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		headless, _ := cmd.Flags().GetBool("headless")
		additive, _ := cmd.Flags().GetBool("additive")
		gated := cfg.Gated
		if cmd.Flags().Changed("gated") {
			gated, _ = cmd.Flags().GetBool("gated")
		}
		mode := domain.LoadSingle
		if additive {
			mode = domain.LoadAdditive
		}

		rt, err := cli.NewRuntime(cfg, logger, sceneflow.WithViewFactory(cli.ViewFactory(os.Stdout)))
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := cli.NotifyContext(cmd.Context())
		defer stop()

		_, err = cli.RunTransition(ctx, rt.Director, cli.RunOptions{
			Target:   cli.ParseSelector(args[0]),
			Mode:     mode,
			Gated:    gated,
			Headless: headless,
			In:       os.Stdin,
			Out:      os.Stdout,
		}, logger)
		if sig := cli.Interrupted(ctx, err); sig != nil {
			// Exit 0 for interruptions
			logger.Info("transition interrupted", "signal", sig)
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "No banner; activate as soon as the loading screen is ready")
	runCmd.Flags().Bool("gated", true, "Wait for the activation trigger (Enter) before activating")
	runCmd.Flags().Bool("additive", false, "Load the scene next to the active one")
}
