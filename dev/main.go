package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	devenv "academia-backend/dev/env"
	"academia-backend/lib/telemetry"

	_ "modernc.org/sqlite"
)

type setupStep struct {
	name string
	run  func() error
}

func create(recreate, skipBrowsers bool) error {
	root, err := devenv.GetWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("run this from inside the academia-backend checkout: %w", err)
	}
	if err := os.Chdir(root); err != nil {
		return err
	}

	if recreate {
		state, err := devenv.StateDir()
		if err != nil {
			return err
		}
		slog.Info("removing dev state", "dir", state)
		if err := os.RemoveAll(state); err != nil {
			return err
		}
	}
	state, err := devenv.StateDir()
	if err != nil {
		return err
	}
	slog.Info("dev state", "dir", state)

	steps := []setupStep{
		{"create databases", CreateEmptyServiceDBs},
		{"create state dirs", CreateStateDirs},
	}
	if !skipBrowsers {
		steps = append(steps, setupStep{"install browsers", InstallBrowsers})
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	PrintConfigLocations()

	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	skipBrowsers := flag.Bool("skip-browsers", false, "do not install the playwright driver and chromium")
	flag.Parse()

	telemetry.InitSlog(false)

	err := create(*recreate, *skipBrowsers)
	if err != nil {
		slog.Error("create dev environment", "err", err)
		os.Exit(1)
	}

	slog.Info("dev environment ready")
}
