package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "academia-backend/dev/env"
	"academia-backend/lib/scrapers/academia"
	snapshotsdb "academia-backend/services/attendancesnapshots/db"
)

func createDb(filename, schema string) error {
	dbPath, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(dbPath)
	if err == nil {
		fmt.Println("database already created at", dbPath)
		return nil
	}

	fmt.Println("creating database at", dbPath)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(schema)
	return err
}

func CreateEmptyServiceDBs() error {
	return createDb("snapshots.db", snapshotsdb.Schema)
}

// CreateStateDirs creates the directories the server and cli dump debug
// output into.
func CreateStateDirs() error {
	for _, dir := range []string{"html_dumps", "resty"} {
		path, err := devenv.ResolvePath(filepath.Join("<dev_state>", dir))
		if err != nil {
			return err
		}
		err = os.MkdirAll(path, 0777)
		if err != nil {
			return err
		}
	}
	return nil
}

func InstallBrowsers() error {
	fmt.Println("installing playwright driver and chromium")
	return academia.InstallPlaywright()
}

func PrintConfigLocations() {
	slog.Info("copy cmd/academia-server/config.json5 to config.local.json5 next to it to override settings, live scraper tests read SRM_EMAIL and SRM_PASSWORD from the environment (or .env).")
}
