package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	manifestPath string
	envFile      string
)

var rootCmd = &cobra.Command{
	Use:   "steeze-session",
	Short: "steeze-session is an authenticating session gateway",
	Long: `A session gateway that verifies and refreshes cookie-held bearer tokens,
caches identity lookups, and forwards API traffic to the backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return loadEnv(envFile)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadEnv reads a dotenv file into the process environment without
// overriding variables that are already set. A missing file is fine.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "manifest path (default $GATEWAY_MANIFEST or manifest.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before startup")
	rootCmd.AddCommand(serveCmd, checkCmd)
}
