// Command easel is a suite of full-screen terminal mini-apps. Each
// canvas runs as its own process attached to a controller over a
// per-session unix socket; the host subcommand is the reference
// controller that spawns canvases and follows navigation handoffs.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "easel",
	Short:        "Full-screen terminal mini-apps on a session channel",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
