package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"academia-backend/lib/restyutil"
	portal "academia-backend/lib/scrapers/academia"
	"academia-backend/lib/telemetry"
	"academia-backend/services/attendancesnapshots"

	"github.com/go-resty/resty/v2"
)

var tracer = telemetry.Tracer("academia.pkg.client")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server responded with %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server responded with %d: %s", e.StatusCode, e.Detail)
}

type errorBody struct {
	Detail string `json:"detail"`
}

type HealthResult struct {
	Status string              `json:"status"`
	Portal *portal.ProbeResult `json:"portal,omitempty"`
}

type scrapeResult struct {
	Status string        `json:"status"`
	Data   portal.Record `json:"data"`
}

type snapshotsResult struct {
	Courses []attendancesnapshots.Course `json:"courses"`
}

type Client struct {
	http *resty.Client
}

// NewClient talks to the api at baseUrl, accessToken is only needed for
// the snapshots route.
func NewClient(baseUrl, accessToken string) Client {
	client := resty.New()
	client.SetBaseURL(baseUrl)
	// a scrape drives a whole browser session
	client.SetTimeout(5 * time.Minute)
	client.SetHeader("accept", "application/json")
	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}
	restyutil.InstrumentClient(client, tracer, nil)
	return Client{http: client}
}

func apiError(res *resty.Response) error {
	out := &APIError{StatusCode: res.StatusCode()}
	if body, ok := res.Error().(*errorBody); ok {
		out.Detail = body.Detail
	}
	return out
}

func (c Client) Health(ctx context.Context, deep bool) (HealthResult, error) {
	req := c.http.R().
		SetContext(ctx).
		SetResult(&HealthResult{}).
		SetError(&errorBody{})
	if deep {
		req.SetQueryParam("deep", "true")
	}
	res, err := req.Get("/health")
	if err != nil {
		return HealthResult{}, err
	}
	if res.IsError() {
		return HealthResult{}, apiError(res)
	}
	return *res.Result().(*HealthResult), nil
}

func (c Client) Scrape(ctx context.Context, email, password string) (portal.Record, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(portal.Credentials{Email: email, Password: password}).
		SetResult(&scrapeResult{}).
		SetError(&errorBody{}).
		Post("/scrape")
	if err != nil {
		return portal.Record{}, err
	}
	if res.IsError() {
		return portal.Record{}, apiError(res)
	}
	return res.Result().(*scrapeResult).Data, nil
}

func (c Client) Snapshots(ctx context.Context, student string) ([]attendancesnapshots.Course, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&snapshotsResult{}).
		SetError(&errorBody{}).
		Get("/snapshots/" + url.PathEscape(student))
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, apiError(res)
	}
	return res.Result().(*snapshotsResult).Courses, nil
}
