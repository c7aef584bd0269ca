package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"academia-backend/lib/scrapers/academia"
	"academia-backend/lib/textutil"
	"academia-backend/services/attendancesnapshots"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterRecord keeps only the courses matching query in attendance, marks
// and margins, an empty query keeps everything.
func FilterRecord(record academia.Record, query string) academia.Record {
	if query == "" {
		return record
	}

	titles := map[string]string{}
	courses := map[string]academia.CourseAttendance{}
	for code, course := range record.Attendance.Courses {
		titles[code] = course.CourseTitle
		if textutil.MatchCourse(query, code, course.CourseTitle) {
			courses[code] = course
		}
	}
	marks := academia.Marks{}
	for code, course := range record.Marks {
		if textutil.MatchCourse(query, code, titles[code]) {
			marks[code] = course
		}
	}

	record.Attendance.Courses = courses
	record.Marks = marks
	record.Summary = academia.BuildSummary(record)
	return record
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func RenderRecord(w io.Writer, record academia.Record) {
	profile := newTable(w, "Student")
	for _, key := range sortedKeys(record.StudentInfo) {
		profile.AppendRow(table.Row{key, record.StudentInfo[key]})
	}
	profile.Render()

	attendance := newTable(w, "Attendance")
	attendance.AppendHeader(table.Row{"Code", "Title", "Category", "Conducted", "Absent", "%", "Margin"})
	for _, code := range sortedKeys(record.Attendance.Courses) {
		course := record.Attendance.Courses[code]
		margin := record.Summary.Margins[code]
		marginText := fmt.Sprintf("skip %d", margin.Hours)
		if course.HoursConducted > 0 && course.HoursAttended()*100 < 75*course.HoursConducted {
			marginText = text.FgRed.Sprintf("attend %d", margin.Hours)
		}
		attendance.AppendRow(table.Row{
			code,
			course.CourseTitle,
			course.Category,
			course.HoursConducted,
			course.HoursAbsent,
			fmt.Sprintf("%.2f", course.AttendancePercentage),
			marginText,
		})
	}
	attendance.AppendFooter(table.Row{
		"", "Overall", "",
		record.Attendance.TotalHoursConducted,
		record.Attendance.TotalHoursAbsent,
		fmt.Sprintf("%.2f", record.Attendance.OverallAttendance),
		"",
	})
	attendance.Render()

	marks := newTable(w, "Marks")
	marks.AppendHeader(table.Row{"Code", "Type", "Test", "Marks", "%"})
	for _, code := range sortedKeys(record.Marks) {
		course := record.Marks[code]
		if len(course.Tests) == 0 {
			marks.AppendRow(table.Row{code, course.CourseType, "-", "-", "-"})
			continue
		}
		for _, test := range course.Tests {
			marks.AppendRow(table.Row{
				code,
				course.CourseType,
				test.TestName,
				fmt.Sprintf("%g / %g", test.ObtainedMarks, test.MaxMarks),
				fmt.Sprintf("%.2f", test.Percentage),
			})
		}
	}
	marks.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true},
	})
	marks.Render()
}

func RenderHistory(w io.Writer, courses []attendancesnapshots.Course, query string) {
	t := newTable(w, "Attendance history")
	t.AppendHeader(table.Row{"Course", "Date", "Conducted", "Absent", "%"})
	for _, course := range courses {
		if !textutil.MatchCourse(query, course.Course, "") {
			continue
		}
		for _, snapshot := range course.Snapshots {
			t.AppendRow(table.Row{
				course.Course,
				formatSnapshotTime(snapshot.Time),
				snapshot.HoursConducted,
				snapshot.HoursAbsent,
				fmt.Sprintf("%.2f", snapshot.Percentage),
			})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.Render()
}
