package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const perfStatsInterval = 30 * time.Second

type perfGauges struct {
	cpu              metric.Float64Gauge
	heapMb           metric.Int64Gauge
	goroutines       metric.Int64Gauge
	browserProcesses metric.Int64Gauge
	browserRssMb     metric.Int64Gauge
}

func newPerfGauges() (perfGauges, error) {
	meter := otel.Meter("academia.perf_stats")

	var g perfGauges
	var errs [5]error
	g.cpu, errs[0] = meter.Float64Gauge("system.cpu_usage")
	g.heapMb, errs[1] = meter.Int64Gauge("process.heap_mb")
	g.goroutines, errs[2] = meter.Int64Gauge("process.goroutines")
	g.browserProcesses, errs[3] = meter.Int64Gauge("browser.processes")
	g.browserRssMb, errs[4] = meter.Int64Gauge("browser.rss_mb")
	return g, errors.Join(errs[:]...)
}

// browserStats sums up the child processes of this process, which are the
// headless browsers (and the playwright driver) spawned by scrapes.
func browserStats(ctx context.Context) (count int64, rssMb int64, err error) {
	self, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return 0, 0, err
	}
	children, err := self.ChildrenWithContext(ctx)
	if errors.Is(err, process.ErrorNoChildren) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	var rss uint64
	for _, child := range children {
		mem, err := child.MemoryInfoWithContext(ctx)
		if err != nil {
			// the child exited between listing and reading
			continue
		}
		rss += mem.RSS
	}
	return int64(len(children)), int64(rss / 1_000_000), nil
}

func (g perfGauges) record(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	g.heapMb.Record(ctx, int64(memStats.HeapAlloc/1_000_000))
	g.goroutines.Record(ctx, int64(runtime.NumGoroutine()))

	usage, err := cpu.PercentWithContext(ctx, 5*time.Second, false)
	if err != nil {
		slog.DebugContext(ctx, "read cpu usage", "err", err)
	} else if len(usage) > 0 {
		g.cpu.Record(ctx, usage[0])
	}

	count, rssMb, err := browserStats(ctx)
	if err != nil {
		slog.DebugContext(ctx, "read browser processes", "err", err)
		return
	}
	g.browserProcesses.Record(ctx, count)
	g.browserRssMb.Record(ctx, rssMb)
}

// InstrumentPerfStats records process and browser gauges until ctx is done.
func InstrumentPerfStats(ctx context.Context) {
	gauges, err := newPerfGauges()
	if err != nil {
		slog.WarnContext(ctx, "perf stats disabled", "err", err)
		return
	}

	go func() {
		ticker := time.NewTicker(perfStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gauges.record(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}
