package cmd

import (
	"fmt"

	"github.com/joeydtaylor/steeze-session/pkg/manifest"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the manifest and print the resolved routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := options().ManifestPath()
		cfg, err := manifest.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "manifest %s ok\n", path)
		fmt.Fprintf(out, "backend  %s (timeout %dms)\n", cfg.Backend.URL, cfg.Backend.TimeoutMS)
		fmt.Fprintf(out, "proxy    prefix=%s stream=%t follow_redirects=%t\n",
			cfg.Proxy.Prefix, cfg.Proxy.Streaming(), cfg.Proxy.Follow())
		for _, rt := range cfg.Routes {
			fmt.Fprintf(out, "route    %-6s %-24s %s\n", rt.Method, rt.Path, rt.Handler.Type)
		}
		return nil
	},
}
