package academia

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	devenv "academia-backend/dev/env"
	"academia-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	mu      sync.Mutex
	calls   int
	results []fakeResult
}

type fakeResult struct {
	content string
	err     error
}

func (d *fakeDriver) FetchAttendancePage(ctx context.Context, creds Credentials) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := d.results[min(d.calls, len(d.results)-1)]
	d.calls++
	return result.content, result.err
}

type memoryOutput struct {
	mu    sync.Mutex
	files map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.files == nil {
		o.files = map[string]string{}
	}
	o.files[id] = contents
}

var testCreds = Credentials{Email: "jd1234@srmist.edu.in", Password: "hunter2"}

func TestScrape(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:academia")
	defer cleanup()

	driver := &fakeDriver{results: []fakeResult{{content: fixtureAttendancePage}}}
	scraper := Scraper{Driver: driver}

	record, err := scraper.Scrape(context.Background(), testCreds)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, driver.calls)
	require.Equal(t, "RA2111003010001", record.RegistrationNumber())
	require.Len(t, record.Attendance.Courses, 3)
}

func TestScrapeMissingCredentials(t *testing.T) {
	driver := &fakeDriver{results: []fakeResult{{content: fixtureAttendancePage}}}
	scraper := Scraper{Driver: driver}

	for _, creds := range []Credentials{
		{},
		{Email: "jd1234@srmist.edu.in"},
		{Password: "hunter2"},
	} {
		_, err := scraper.Scrape(context.Background(), creds)
		require.ErrorIs(t, err, ErrMissingCredentials)
	}
	require.Equal(t, 0, driver.calls)
}

func TestScrapeRetries(t *testing.T) {
	stepErr := &StepError{
		Step:     "login: fill password",
		PageHtml: "<html>login failed</html>",
		Err:      errors.New("timeout 30000ms exceeded"),
	}
	driver := &fakeDriver{results: []fakeResult{
		{err: stepErr},
		{content: fixtureAttendancePage},
	}}
	dump := &memoryOutput{}
	scraper := Scraper{
		Driver:       driver,
		Attempts:     3,
		RetryBackoff: time.Millisecond,
		Dump:         dump,
	}

	record, err := scraper.Scrape(context.Background(), testCreds)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 2, driver.calls)
	require.Equal(t, "JANE DOE", record.StudentInfo["name"])

	// the page at the failed step is kept for debugging
	require.Len(t, dump.files, 1)
	for id, contents := range dump.files {
		require.True(t, strings.HasPrefix(id, "step-"), id)
		require.Equal(t, stepErr.PageHtml, contents)
	}
}

func TestScrapeGivesUp(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	driver := &fakeDriver{results: []fakeResult{
		{err: &StepError{Step: "open portal", Err: cause}},
	}}
	scraper := Scraper{
		Driver:       driver,
		Attempts:     2,
		RetryBackoff: time.Millisecond,
	}

	_, err := scraper.Scrape(context.Background(), testCreds)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "open portal: net::ERR_NAME_NOT_RESOLVED", err.Error())
	require.Equal(t, 2, driver.calls)
}

func TestScrapeCancelledDuringBackoff(t *testing.T) {
	driver := &fakeDriver{results: []fakeResult{{err: errors.New("boom")}}}
	scraper := Scraper{
		Driver:       driver,
		Attempts:     5,
		RetryBackoff: time.Hour,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := scraper.Scrape(ctx, testCreds)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, driver.calls)
}

func TestScrapeDumpsUnparsablePage(t *testing.T) {
	content := "<div>Session expired, please log in again</div>"
	driver := &fakeDriver{results: []fakeResult{{content: content}}}
	dump := &memoryOutput{}
	scraper := Scraper{Driver: driver, Dump: dump}

	_, err := scraper.Scrape(context.Background(), testCreds)
	require.ErrorIs(t, err, ErrUnexpectedLayout)

	require.Len(t, dump.files, 1)
	for id, contents := range dump.files {
		require.True(t, strings.HasPrefix(id, "parse-"), id)
		require.True(t, strings.HasSuffix(id, ".html"), id)
		require.Equal(t, content, contents)
	}
}

func TestNewDriver(t *testing.T) {
	driver, err := NewDriver(Options{})
	require.NoError(t, err)
	require.IsType(t, PlaywrightDriver{}, driver)

	driver, err = NewDriver(Options{Driver: "Chromedp"})
	require.NoError(t, err)
	require.IsType(t, ChromedpDriver{}, driver)

	_, err = NewDriver(Options{Driver: "selenium"})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestNewScraper(t *testing.T) {
	dir := t.TempDir()
	scraper, err := NewScraper(Options{Driver: "chromedp", Attempts: 2, DumpDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 2, scraper.Attempts)
	require.NotNil(t, scraper.Dump)
	require.Greater(t, scraper.Timeout, time.Duration(0))
}

// TestLiveScrape runs the whole flow against the real portal, it needs
// SRM_EMAIL and SRM_PASSWORD and an installed playwright driver.
func TestLiveScrape(t *testing.T) {
	creds, ok := devenv.GetLiveCredentials()
	if !ok {
		t.Skip("SRM_EMAIL and SRM_PASSWORD are not set")
	}

	cleanup := telemetry.SetupForTesting("test:academia")
	defer cleanup()

	record, err := GetSRMData(context.Background(), creds.Email, creds.Password)
	if err != nil {
		t.Fatal(err)
	}
	require.NotEmpty(t, record.RegistrationNumber())
	require.Greater(t, len(record.Attendance.Courses), 0)
}
