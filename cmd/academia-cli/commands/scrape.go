package commands

import (
	"errors"
	"os"

	"academia-backend/lib/configutil"
	"academia-backend/lib/scrapers/academia"

	"github.com/spf13/cobra"
)

type scrapeConfig struct {
	Scraper academia.Options `json:"scraper"`
}

var (
	scrapeEmail    *string
	scrapePassword *string
	scrapeDriver   *string
	scrapeHeadful  *bool
	scrapeConfigAt *string
)

func init() {
	scrapeEmail = scrapeCmd.Flags().String("email", "", "Portal email, defaults to $SRM_EMAIL.")
	scrapePassword = scrapeCmd.Flags().String("password", "", "Portal password, defaults to $SRM_PASSWORD.")
	scrapeDriver = scrapeCmd.Flags().String("driver", "", "Browser driver, playwright or chromedp.")
	scrapeHeadful = scrapeCmd.Flags().Bool("headful", false, "Show the browser window.")
	scrapeConfigAt = scrapeCmd.Flags().String("config", "config.json5", "Read scraper options from the `scraper` key of this file if it exists.")
	rootCmd.AddCommand(scrapeCmd)
}

// credentials from flags first, then the environment.
func resolveCredentials() academia.Credentials {
	creds := academia.Credentials{
		Email:    *scrapeEmail,
		Password: *scrapePassword,
	}
	if creds.Email == "" {
		creds.Email = os.Getenv("SRM_EMAIL")
	}
	if creds.Password == "" {
		creds.Password = os.Getenv("SRM_PASSWORD")
	}
	return creds
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--email <email>] [--password <password>] [--driver playwright|chromedp]",
	Short: "Logs into the portal with a local browser and prints the attendance record.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configutil.ReadConfig[scrapeConfig](*scrapeConfigAt)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		opts := cfg.Scraper
		if *scrapeDriver != "" {
			opts.Driver = *scrapeDriver
		}
		if *scrapeHeadful {
			opts.Headful = true
		}

		scraper, err := academia.NewScraper(opts)
		if err != nil {
			return err
		}
		record, err := scraper.Scrape(cmd.Context(), resolveCredentials())
		if err != nil {
			return err
		}
		return printRecord(cmd, record)
	},
}

func printRecord(cmd *cobra.Command, record academia.Record) error {
	record = FilterRecord(record, *courseFilter)
	if *jsonOutput {
		return writeJSON(cmd.OutOrStdout(), record)
	}
	RenderRecord(cmd.OutOrStdout(), record)
	return nil
}
