package commands

import (
	"log/slog"

	"academia-backend/lib/scrapers/academia"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Installs the playwright driver and chromium used by the default scraper.",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := academia.InstallPlaywright()
		if err != nil {
			return err
		}
		slog.Info("playwright driver and chromium installed")
		return nil
	},
}
