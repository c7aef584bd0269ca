package commands

import (
	"context"
	"log/slog"
	"time"

	"academia-backend/lib/telemetry"
)

// initTelemetry sets up logging and telemetry for one cli invocation, the
// returned func flushes exporters.
func initTelemetry(ctx context.Context, verbose bool) (func(), error) {
	telemetry.InitSlog(verbose)

	err := telemetry.SetupFromEnv(ctx, "academia-cli")
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}, nil
}
