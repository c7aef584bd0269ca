package attendancesnapshots

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"academia-backend/lib/timezone"
	"academia-backend/services/attendancesnapshots/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/attendancesnapshots")

var ErrMissingStudent = errors.New("student is required")

type PushCourse struct {
	Course         string
	Percentage     float64
	HoursConducted int
	HoursAbsent    int
}

type PushRequest struct {
	Student string
	Time    time.Time
	Courses []PushCourse
}

type Snapshot struct {
	// unix seconds
	Time           int64   `json:"time"`
	Percentage     float64 `json:"percentage"`
	HoursConducted int     `json:"hours_conducted"`
	HoursAbsent    int     `json:"hours_absent"`
}

type Course struct {
	Course    string     `json:"course"`
	Snapshots []Snapshot `json:"snapshots"`
}

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

// Push records the attendance of each course at req.Time, replacing
// whatever was pushed for the student earlier on the same day.
func (s Service) Push(ctx context.Context, req PushRequest) error {
	ctx, span := tracer.Start(ctx, "Push")
	defer span.End()

	span.SetAttributes(
		attribute.String("student", req.Student),
		attribute.Int("courses", len(req.Courses)),
	)
	if req.Student == "" {
		span.SetStatus(codes.Error, ErrMissingStudent.Error())
		return ErrMissingStudent
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	startOfToday := timezone.StartOfDay(req.Time)
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)

	err = txqry.DeleteAttendanceSnapshotsIn(ctx, db.DeleteAttendanceSnapshotsInParams{
		After:   startOfToday.Unix(),
		Before:  startOfTomorrow.Unix(),
		Student: req.Student,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, course := range req.Courses {
		err := txqry.CreateStudentCourse(ctx, db.CreateStudentCourseParams{
			Student: req.Student,
			Course:  course.Course,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		studentCourseId, err := txqry.GetStudentCourseId(ctx, db.GetStudentCourseIdParams{
			Student: req.Student,
			Course:  course.Course,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		err = txqry.CreateAttendanceSnapshot(ctx, db.CreateAttendanceSnapshotParams{
			StudentCourseID: studentCourseId,
			Time:            req.Time.Unix(),
			Percentage:      course.Percentage,
			HoursConducted:  int64(course.HoursConducted),
			HoursAbsent:     int64(course.HoursAbsent),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Pull returns every snapshot of the student, grouped by course (sorted by
// course code) and ordered by time within a course.
func (s Service) Pull(ctx context.Context, student string) ([]Course, error) {
	ctx, span := tracer.Start(ctx, "Pull")
	defer span.End()

	span.SetAttributes(attribute.String("student", student))

	rows, err := s.qry.GetAttendanceSnapshots(ctx, student)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	courses := []Course{}
	for _, r := range rows {
		// rows are sorted by course, so the snapshots of one course are
		// always next to each other
		if len(courses) == 0 || courses[len(courses)-1].Course != r.Course {
			courses = append(courses, Course{Course: r.Course})
		}
		last := &courses[len(courses)-1]
		last.Snapshots = append(last.Snapshots, Snapshot{
			Time:           r.Time,
			Percentage:     r.Percentage,
			HoursConducted: int(r.HoursConducted),
			HoursAbsent:    int(r.HoursAbsent),
		})
	}

	return courses, nil
}
