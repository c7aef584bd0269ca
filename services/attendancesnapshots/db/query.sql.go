package db

import (
	"context"
)

const createAttendanceSnapshot = `-- name: CreateAttendanceSnapshot :exec
insert into attendance_snapshot(student_course_id, time, percentage, hours_conducted, hours_absent)
values (?, ?, ?, ?, ?)
`

type CreateAttendanceSnapshotParams struct {
	StudentCourseID int64
	Time            int64
	Percentage      float64
	HoursConducted  int64
	HoursAbsent     int64
}

func (q *Queries) CreateAttendanceSnapshot(ctx context.Context, arg CreateAttendanceSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createAttendanceSnapshot,
		arg.StudentCourseID,
		arg.Time,
		arg.Percentage,
		arg.HoursConducted,
		arg.HoursAbsent,
	)
	return err
}

const createStudentCourse = `-- name: CreateStudentCourse :exec
insert into student_course(student, course) values (?, ?)
on conflict do nothing
`

type CreateStudentCourseParams struct {
	Student string
	Course  string
}

func (q *Queries) CreateStudentCourse(ctx context.Context, arg CreateStudentCourseParams) error {
	_, err := q.db.ExecContext(ctx, createStudentCourse, arg.Student, arg.Course)
	return err
}

const deleteAttendanceSnapshotsIn = `-- name: DeleteAttendanceSnapshotsIn :exec
delete from attendance_snapshot
where time >= ?1 and time < ?2
and student_course_id in (
    select id from student_course where student = ?3
)
`

type DeleteAttendanceSnapshotsInParams struct {
	After   int64
	Before  int64
	Student string
}

func (q *Queries) DeleteAttendanceSnapshotsIn(ctx context.Context, arg DeleteAttendanceSnapshotsInParams) error {
	_, err := q.db.ExecContext(ctx, deleteAttendanceSnapshotsIn, arg.After, arg.Before, arg.Student)
	return err
}

const getAttendanceSnapshots = `-- name: GetAttendanceSnapshots :many
select student_course.course, attendance_snapshot.time, attendance_snapshot.percentage,
    attendance_snapshot.hours_conducted, attendance_snapshot.hours_absent
from attendance_snapshot
inner join student_course on student_course.id = attendance_snapshot.student_course_id
where student_course.student = ?
order by student_course.course, attendance_snapshot.time
`

type GetAttendanceSnapshotsRow struct {
	Course         string
	Time           int64
	Percentage     float64
	HoursConducted int64
	HoursAbsent    int64
}

func (q *Queries) GetAttendanceSnapshots(ctx context.Context, student string) ([]GetAttendanceSnapshotsRow, error) {
	rows, err := q.db.QueryContext(ctx, getAttendanceSnapshots, student)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetAttendanceSnapshotsRow
	for rows.Next() {
		var i GetAttendanceSnapshotsRow
		if err := rows.Scan(
			&i.Course,
			&i.Time,
			&i.Percentage,
			&i.HoursConducted,
			&i.HoursAbsent,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getStudentCourseId = `-- name: GetStudentCourseId :one
select id from student_course
where student = ? and course = ?
`

type GetStudentCourseIdParams struct {
	Student string
	Course  string
}

func (q *Queries) GetStudentCourseId(ctx context.Context, arg GetStudentCourseIdParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getStudentCourseId, arg.Student, arg.Course)
	var id int64
	err := row.Scan(&id)
	return id, err
}
