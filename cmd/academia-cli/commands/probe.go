package commands

import (
	"fmt"

	"academia-backend/lib/scrapers/academia"

	"github.com/spf13/cobra"
)

var probeUrl *string

func init() {
	probeUrl = probeCmd.Flags().String("url", academia.DefaultBaseUrl, "The portal url to probe.")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe [--url <portal url>]",
	Short: "Checks that the portal is reachable without logging in.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := academia.Probe(cmd.Context(), *probeUrl)
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s responded with %d in %dms\n", *probeUrl, result.StatusCode, result.LatencyMs)
		return nil
	},
}
