package cmd

import (
	"github.com/joeydtaylor/steeze-session/pkg/serverfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(serverfx.Module(options()))
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

// options applies --manifest on top of the environment defaults.
func options() serverfx.Options {
	opts := serverfx.DefaultOptions()
	if manifestPath != "" {
		opts.ManifestEnv = ""
		opts.DefaultManifest = manifestPath
	}
	return opts
}
