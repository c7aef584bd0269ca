package commands

import (
	"os"
	"time"

	"academia-backend/lib/timezone"
	"academia-backend/pkg/client"

	"github.com/spf13/cobra"
)

func init() {
	for _, cmd := range []*cobra.Command{fetchCmd, historyCmd} {
		cmd.Flags().StringVar(&serverFlags.url, "server", "", "Base url of academia-server, defaults to $ACADEMIA_SERVER_URL or http://localhost:8000.")
	}
	historyCmd.Flags().StringVar(&serverFlags.token, "token", "", "Access token of academia-server, defaults to $ACADEMIA_ACCESS_TOKEN.")

	fetchCmd.Flags().StringVar(&fetchFlags.email, "email", "", "Portal email, defaults to $SRM_EMAIL.")
	fetchCmd.Flags().StringVar(&fetchFlags.password, "password", "", "Portal password, defaults to $SRM_PASSWORD.")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(historyCmd)
}

var serverFlags struct {
	url   string
	token string
}

var fetchFlags struct {
	email    string
	password string
}

func envOr(value, key, fallback string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(key); env != "" {
		return env
	}
	return fallback
}

func newClient() client.Client {
	return client.NewClient(
		envOr(serverFlags.url, "ACADEMIA_SERVER_URL", "http://localhost:8000"),
		envOr(serverFlags.token, "ACADEMIA_ACCESS_TOKEN", ""),
	)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--server <url>] [--email <email>] [--password <password>]",
	Short: "Asks a running academia-server to scrape and prints the record.",
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := newClient().Scrape(
			cmd.Context(),
			envOr(fetchFlags.email, "SRM_EMAIL", ""),
			envOr(fetchFlags.password, "SRM_PASSWORD", ""),
		)
		if err != nil {
			return err
		}
		return printRecord(cmd, record)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <student> [--server <url>] [--token <token>]",
	Short: "Prints the attendance snapshots a server has recorded for a student.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courses, err := newClient().Snapshots(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(cmd.OutOrStdout(), courses)
		}
		RenderHistory(cmd.OutOrStdout(), courses, *courseFilter)
		return nil
	},
}

func formatSnapshotTime(unix int64) string {
	return time.Unix(unix, 0).In(timezone.Location).Format("2006-01-02 15:04")
}
