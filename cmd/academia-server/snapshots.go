package main

import (
	configlibsql "academia-backend/lib/configutil/libsql"
	"academia-backend/services/attendancesnapshots"
	"academia-backend/services/attendancesnapshots/db"
)

type SnapshotsConfig struct {
	Database configlibsql.Struct `json:"database"`
}

// InitSnapshots returns nil when no database is configured.
func InitSnapshots(cfg SnapshotsConfig) (*attendancesnapshots.Service, error) {
	if !cfg.Database.Enabled() {
		return nil, nil
	}
	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		return nil, err
	}
	service := attendancesnapshots.NewService(database)
	return &service, nil
}
