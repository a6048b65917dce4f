package main

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/easelterm/easel/internal/registry"
)

var canvasesCmd = &cobra.Command{
	Use:   "canvases",
	Short: "List the canvas catalog",
	Run: func(cmd *cobra.Command, args []string) {
		for _, o := range registry.Options() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-16s %s\n", o.Kind, o.Name, o.Description)
		}
	},
}

func init() { rootCmd.AddCommand(canvasesCmd) }

// didYouMean suggests the catalog entry closest to a mistyped kind.
func didYouMean(kind string) string {
	best, bestDist := "", 3
	for _, k := range registry.Kinds() {
		if d := levenshtein.ComputeDistance(kind, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(", did you mean %q?", best)
}
