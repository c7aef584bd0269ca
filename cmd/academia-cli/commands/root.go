package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	jsonOutput   *bool
	courseFilter *string
	verbose      *bool

	shutdownTelemetry = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "academia-cli",
	Short: "academia-cli scrapes the SRM academia portal and inspects the results.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		shutdown, err := initTelemetry(cmd.Context(), *verbose)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		shutdownTelemetry = shutdown

		err = godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("load .env", "err", err)
		}
		return nil
	},
}

func init() {
	jsonOutput = rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON instead of tables.")
	courseFilter = rootCmd.PersistentFlags().String("course", "", "Only show courses whose code or title matches this.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	shutdownTelemetry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
