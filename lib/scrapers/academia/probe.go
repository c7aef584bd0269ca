package academia

import (
	"context"
	"fmt"
	"time"

	"academia-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var probeClient = newProbeClient(nil)

func newProbeClient(out restyutil.InstrumentOutput) *resty.Client {
	client := resty.New()
	client.SetTimeout(15 * time.Second)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	client.SetHeader("user-agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36")
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	restyutil.InstrumentClient(client, tracer, out)
	return client
}

type ProbeResult struct {
	StatusCode int   `json:"status_code"`
	LatencyMs  int64 `json:"latency_ms"`
}

// Probe checks that the portal answers at all, it does not log in.
func Probe(ctx context.Context, baseUrl string) (ProbeResult, error) {
	ctx, span := tracer.Start(ctx, "Probe")
	defer span.End()

	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	start := time.Now()
	res, err := probeClient.R().
		SetContext(ctx).
		Get(baseUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "portal unreachable")
		return ProbeResult{}, err
	}

	result := ProbeResult{
		StatusCode: res.StatusCode(),
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	span.SetAttributes(
		attribute.Int("status_code", result.StatusCode),
		attribute.Int64("latency_ms", result.LatencyMs),
	)
	if result.StatusCode >= 500 {
		err := fmt.Errorf("portal responded with status %d", result.StatusCode)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	return result, nil
}
