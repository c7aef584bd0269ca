package academia

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	portal "academia-backend/lib/scrapers/academia"
	"academia-backend/lib/serviceutil"
	"academia-backend/lib/timezone"
	"academia-backend/services/attendancesnapshots"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/academia")

const maxRequestBody = 64 << 10

type Scraper interface {
	Scrape(ctx context.Context, creds portal.Credentials) (portal.Record, error)
}

type Snapshots interface {
	Push(ctx context.Context, req attendancesnapshots.PushRequest) error
	Pull(ctx context.Context, student string) ([]attendancesnapshots.Course, error)
}

type ProbeFunc func(ctx context.Context, baseUrl string) (portal.ProbeResult, error)

type Options struct {
	Scraper Scraper
	// nil disables snapshot pushes and the snapshots route
	Snapshots Snapshots
	// bearer token for the snapshots route, empty disables the route
	AccessToken string
	// probed by /health?deep=true
	PortalUrl string

	Probe ProbeFunc
	Now   func() time.Time
}

type Service struct {
	scraper     Scraper
	snapshots   Snapshots
	accessToken string
	portalUrl   string
	probe       ProbeFunc
	now         func() time.Time
}

func NewService(opts Options) Service {
	s := Service{
		scraper:     opts.Scraper,
		snapshots:   opts.Snapshots,
		accessToken: opts.AccessToken,
		portalUrl:   opts.PortalUrl,
		probe:       opts.Probe,
		now:         opts.Now,
	}
	if s.probe == nil {
		s.probe = portal.Probe
	}
	if s.now == nil {
		s.now = timezone.Now
	}
	return s
}

// Handler returns the routes wrapped in cors, access logging and tracing.
func (s Service) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.health).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/scrape", s.scrape).Methods(http.MethodPost)

	if s.snapshots != nil && s.accessToken != "" {
		snapshots := router.PathPrefix("/snapshots").Subrouter()
		snapshots.Use(serviceutil.VerifyAccessToken(s.accessToken))
		snapshots.HandleFunc("/{student}", s.pullSnapshots).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Not Found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
	})

	// every origin is echoed back, a literal * is rejected by browsers
	// when credentials are allowed
	allowAll := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIdHeader},
		AllowCredentials: true,
	})

	var handler http.Handler = router
	handler = allowAll.Handler(handler)
	handler = accessLog(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(handler)
	handler = withRequestId(handler)
	return otelhttp.NewHandler(handler, "academia")
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status string              `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Portal *portal.ProbeResult `json:"portal,omitempty"`
}

type scrapeResponse struct {
	Status string        `json:"status"`
	Data   portal.Record `json:"data"`
}

type snapshotsResponse struct {
	Courses []attendancesnapshots.Course `json:"courses"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("write response", "err", err)
	}
}

func (s Service) health(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("deep") != "true" {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx := r.Context()
	result, err := s.probe(ctx, s.portalUrl)
	if err != nil {
		slog.WarnContext(ctx, "portal probe failed", "err", err)
		res := healthResponse{Status: "degraded", Detail: err.Error()}
		if result.StatusCode != 0 {
			res.Portal = &result
		}
		writeJSON(w, http.StatusServiceUnavailable, res)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Portal: &result})
}

func decodeCredentials(r *http.Request, w http.ResponseWriter) (portal.Credentials, error) {
	var creds portal.Credentials
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	err := decoder.Decode(&creds)
	if err != nil {
		return portal.Credentials{}, errors.New("invalid request body: " + err.Error())
	}
	if creds.Email == "" || creds.Password == "" {
		return portal.Credentials{}, portal.ErrMissingCredentials
	}
	return creds, nil
}

func (s Service) scrape(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Scrape")
	defer span.End()

	creds, err := decodeCredentials(r, w)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
		return
	}

	record, err := s.scraper.Scrape(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		slog.ErrorContext(ctx, "scrape failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}
	span.SetAttributes(attribute.Int("courses", len(record.Attendance.Courses)))

	s.pushSnapshot(ctx, creds.Email, record)

	writeJSON(w, http.StatusOK, scrapeResponse{
		Status: "success",
		Data:   record,
	})
}

// StudentKey identifies a student in the snapshot store.
func StudentKey(email string, record portal.Record) string {
	if reg := record.RegistrationNumber(); reg != "" {
		return reg
	}
	return email
}

func snapshotRequest(student string, now time.Time, record portal.Record) attendancesnapshots.PushRequest {
	req := attendancesnapshots.PushRequest{
		Student: student,
		Time:    now,
	}
	for code, course := range record.Attendance.Courses {
		req.Courses = append(req.Courses, attendancesnapshots.PushCourse{
			Course:         code,
			Percentage:     course.AttendancePercentage,
			HoursConducted: course.HoursConducted,
			HoursAbsent:    course.HoursAbsent,
		})
	}
	return req
}

// a failed push does not fail the scrape.
func (s Service) pushSnapshot(ctx context.Context, email string, record portal.Record) {
	if s.snapshots == nil || len(record.Attendance.Courses) == 0 {
		return
	}
	student := StudentKey(email, record)
	err := s.snapshots.Push(ctx, snapshotRequest(student, s.now(), record))
	if err != nil {
		slog.WarnContext(ctx, "push attendance snapshot", "student", student, "err", err)
	}
}

func (s Service) pullSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	student := mux.Vars(r)["student"]

	courses, err := s.snapshots.Pull(ctx, student)
	if err != nil {
		slog.ErrorContext(ctx, "pull attendance snapshots", "student", student, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snapshotsResponse{Courses: courses})
}
