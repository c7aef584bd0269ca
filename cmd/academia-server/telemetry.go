package main

import (
	"context"
	"log/slog"

	"academia-backend/lib/restyutil"
	"academia-backend/lib/scrapers/academia"
	"academia-backend/lib/serviceutil"
	"academia-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "academia-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	out, err := restyutil.NewFilesystemOutput("<dev_state>/resty/probe")
	if err != nil {
		slog.WarnContext(ctx, "resty message dumps disabled", "err", err)
		return
	}
	academia.SetRestyInstrumentOutput(out)
}
