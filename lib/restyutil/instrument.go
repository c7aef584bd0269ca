package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

type dumpIdKey struct{}

type instrumenter struct {
	tracer trace.Tracer
	output InstrumentOutput
	count  atomic.Uint64
}

// InstrumentClient traces every request made by `client` and, when debug
// logging is on and `output` is not nil, writes each exchange to `output`
// as http-NNNN.txt. A nil tracer falls back to otel.Tracer("resty").
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}
	i := &instrumenter{tracer: tracer, output: output}
	client.OnBeforeRequest(i.before)
	client.OnAfterResponse(i.after)
	client.OnError(i.failed)
}

func (i *instrumenter) before(_ *resty.Client, req *resty.Request) error {
	ctx, _ := i.tracer.Start(req.Context(), "http "+req.Method)

	if i.output != nil && slog.Default().Enabled(ctx, slog.LevelDebug) {
		id := fmt.Sprintf("http-%04d.txt", i.count.Add(1))
		ctx = context.WithValue(ctx, dumpIdKey{}, id)
		slog.DebugContext(ctx, "http request", "method", req.Method, "url", req.URL, "dump", id)
	}

	req.SetContext(ctx)
	return nil
}

func (i *instrumenter) after(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	// RawRequest is only populated once the request has been sent
	if res.Request.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
	}
	if res.RawResponse != nil {
		span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	}

	if id, ok := ctx.Value(dumpIdKey{}).(string); ok {
		i.output.Write(id, formatHttpMessage(res))
		slog.DebugContext(ctx, "http response", "status", res.StatusCode(), "dump", id)
	}
	return nil
}

func (i *instrumenter) failed(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")
	if req.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	}

	attrs := []any{"method", req.Method, "url", req.URL, "err", err}
	if id, ok := ctx.Value(dumpIdKey{}).(string); ok {
		attrs = append(attrs, "dump", id)
	}
	slog.ErrorContext(ctx, "http request failed", attrs...)
}
