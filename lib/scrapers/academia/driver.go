package academia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://academia.srmist.edu.in/"

const (
	loginFrameSelector     = ".siginiframe"
	loginIdSelector        = "input#login_id"
	passwordSelector       = "input#password"
	nextButtonSelector     = "#nextbtn"
	attendanceTabSelector  = "#tab_My_Time_Table_Attendance"
	attendanceLinkSelector = "#My_Attendance"
	contentSelector        = ".mainDiv"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultLoginSettle  = 3 * time.Second
	defaultPageSettle   = 2 * time.Second
	defaultRetryBackoff = 2 * time.Second
)

var ErrUnknownDriver = errors.New("unknown driver")

// Driver logs into the portal and returns the inner html of the attendance
// page's .mainDiv.
type Driver interface {
	FetchAttendancePage(ctx context.Context, creds Credentials) (string, error)
}

type Options struct {
	// "playwright" (default) or "chromedp"
	Driver  string `json:"driver"`
	BaseUrl string `json:"base_url"`
	Headful bool   `json:"headful"`
	// chromedp only, a devtools websocket url to use instead of a local
	// browser
	RemoteUrl      string `json:"remote_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Attempts       int    `json:"attempts"`
	// raw html is written here when the page cannot be parsed
	DumpDir string `json:"dump_dir"`

	// zero means the defaults, these exist mostly for tests
	LoginSettle time.Duration `json:"-"`
	PageSettle  time.Duration `json:"-"`
}

func (o Options) baseUrl() string {
	if o.BaseUrl == "" {
		return DefaultBaseUrl
	}
	return o.BaseUrl
}

func (o Options) timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

func (o Options) loginSettle() time.Duration {
	if o.LoginSettle <= 0 {
		return defaultLoginSettle
	}
	return o.LoginSettle
}

func (o Options) pageSettle() time.Duration {
	if o.PageSettle <= 0 {
		return defaultPageSettle
	}
	return o.PageSettle
}

func NewDriver(opts Options) (Driver, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "playwright":
		return PlaywrightDriver{opts: opts}, nil
	case "chromedp":
		return ChromedpDriver{opts: opts}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}

// StepError is returned by drivers when a step of the browser flow fails,
// PageHtml is whatever the page looked like at that point (may be empty).
type StepError struct {
	Step     string
	PageHtml string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Err.Error())
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// browserSession runs the named steps of a browser flow, snapshot is
// called to capture the page when a step fails.
type browserSession struct {
	snapshot func() string
}

func (s browserSession) run(ctx context.Context, step string, fn func() error) error {
	ctx, span := tracer.Start(ctx, "step:"+step)
	defer span.End()

	err := ctx.Err()
	if err == nil {
		slog.DebugContext(ctx, "browser step", "step", step)
		err = fn()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "browser step failed")

		stepErr := &StepError{Step: step, Err: err}
		if s.snapshot != nil && ctx.Err() == nil {
			stepErr.PageHtml = s.snapshot()
		}
		return stepErr
	}
	return nil
}

func (s browserSession) settle(ctx context.Context, step string, d time.Duration) error {
	return s.run(ctx, step, func() error {
		return sleep(ctx, d)
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
