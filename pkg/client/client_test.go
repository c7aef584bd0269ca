package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	portal "academia-backend/lib/scrapers/academia"
	"academia-backend/lib/testutil"
	"academia-backend/services/academia"
	"academia-backend/services/attendancesnapshots"
	"academia-backend/services/attendancesnapshots/db"

	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	record portal.Record
	err    error
}

func (s fakeScraper) Scrape(ctx context.Context, creds portal.Credentials) (portal.Record, error) {
	if creds.Password != "hunter2" {
		return portal.Record{}, errors.New("login: submit password: wrong password")
	}
	return s.record, s.err
}

func TestClient(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "pkg/client",
		DbSchema: db.Schema,
	})
	defer cleanup()

	record := portal.Record{
		StudentInfo: portal.StudentInfo{"registration_number": "RA2111003010001"},
		Attendance: portal.Attendance{
			Courses: map[string]portal.CourseAttendance{
				"21CSC304J": {HoursConducted: 30, HoursAbsent: 9, AttendancePercentage: 70},
			},
			OverallAttendance:   70,
			TotalHoursConducted: 30,
			TotalHoursAbsent:    9,
		},
		Marks: portal.Marks{},
	}

	service := academia.NewService(academia.Options{
		Scraper:     fakeScraper{record: record},
		Snapshots:   attendancesnapshots.NewService(setup.DB),
		AccessToken: "secret",
		Probe: func(ctx context.Context, baseUrl string) (portal.ProbeResult, error) {
			return portal.ProbeResult{StatusCode: 200, LatencyMs: 5}, nil
		},
	})
	srv := httptest.NewServer(service.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewClient(srv.URL, "secret")

	health, err := client.Health(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "ok", health.Status)
	require.Equal(t, 200, health.Portal.StatusCode)

	scraped, err := client.Scrape(ctx, "jd1234@srmist.edu.in", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, record.Attendance, scraped.Attendance)

	_, err = client.Scrape(ctx, "jd1234@srmist.edu.in", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 500, apiErr.StatusCode)
	require.Equal(t, "login: submit password: wrong password", apiErr.Detail)

	_, err = client.Scrape(ctx, "", "")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 422, apiErr.StatusCode)

	courses, err := client.Snapshots(ctx, "RA2111003010001")
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, courses, 1)
	require.Equal(t, "21CSC304J", courses[0].Course)

	_, err = NewClient(srv.URL, "").Snapshots(ctx, "RA2111003010001")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.StatusCode)
	require.Equal(t, "Unauthorized", apiErr.Detail)
}
