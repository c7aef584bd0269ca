package academia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"academia-backend/lib/restyutil"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrMissingCredentials = errors.New("email and password are required")

type Scraper struct {
	Driver Driver
	// total tries of the browser flow, less than 1 means 1
	Attempts     int
	RetryBackoff time.Duration
	// bounds one whole scrape including retries, zero means no bound
	Timeout time.Duration
	// receives raw html that could not be parsed, may be nil
	Dump restyutil.InstrumentOutput
}

func NewScraper(opts Options) (Scraper, error) {
	driver, err := NewDriver(opts)
	if err != nil {
		return Scraper{}, err
	}

	scraper := Scraper{
		Driver:   driver,
		Attempts: opts.Attempts,
		// each attempt is bounded by the driver's own timeouts, this
		// only keeps a stuck session from hanging forever
		Timeout: opts.timeout() * time.Duration(max(opts.Attempts, 1)) * 3,
	}
	if opts.DumpDir != "" {
		dump, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return Scraper{}, fmt.Errorf("create dump dir: %w", err)
		}
		scraper.Dump = dump
	}
	return scraper, nil
}

func (s Scraper) retryBackoff() time.Duration {
	if s.RetryBackoff <= 0 {
		return defaultRetryBackoff
	}
	return s.RetryBackoff
}

func (s Scraper) dump(ctx context.Context, kind, contents string) {
	if s.Dump == nil || contents == "" {
		return
	}
	id := fmt.Sprintf("%s-%s.html", kind, uuid.NewString())
	s.Dump.Write(id, contents)
	slog.WarnContext(ctx, "dumped page html", "id", id)
}

func (s Scraper) fetch(ctx context.Context, creds Credentials) (string, error) {
	attempts := max(s.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := s.Driver.FetchAttendancePage(ctx, creds)
		if err == nil {
			return content, nil
		}
		lastErr = err

		slog.WarnContext(ctx, "fetch attendance page", "attempt", attempt, "of", attempts, "err", err)
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			s.dump(ctx, "step", stepErr.PageHtml)
		}

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, s.retryBackoff()); err != nil {
			return "", errors.Join(lastErr, err)
		}
	}
	return "", lastErr
}

// Scrape logs in with creds and returns the student's record.
func (s Scraper) Scrape(ctx context.Context, creds Credentials) (Record, error) {
	ctx, span := tracer.Start(ctx, "Scraper:Scrape")
	defer span.End()

	if creds.Email == "" || creds.Password == "" {
		span.SetStatus(codes.Error, ErrMissingCredentials.Error())
		return Record{}, ErrMissingCredentials
	}
	if s.Driver == nil {
		return Record{}, fmt.Errorf("%w: no driver", ErrUnknownDriver)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	content, err := s.fetch(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch attendance page")
		return Record{}, err
	}
	span.SetAttributes(attribute.Int("content_length", len(content)))

	record, err := ParseAttendancePage(ctx, content)
	if err != nil {
		s.dump(ctx, "parse", content)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse attendance page")
		return Record{}, fmt.Errorf("parse attendance page: %w", err)
	}

	slog.DebugContext(
		ctx, "scraped record",
		"courses", len(record.Attendance.Courses),
		"tests", record.Summary.TestCount,
	)
	return record, nil
}

// GetSRMData scrapes once with the default playwright driver.
func GetSRMData(ctx context.Context, email, password string) (Record, error) {
	scraper, err := NewScraper(Options{})
	if err != nil {
		return Record{}, err
	}
	return scraper.Scrape(ctx, Credentials{Email: email, Password: password})
}
