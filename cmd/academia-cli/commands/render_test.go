package commands

import (
	"bytes"
	"strings"
	"testing"

	"academia-backend/lib/scrapers/academia"
	"academia-backend/services/attendancesnapshots"

	"github.com/stretchr/testify/require"
)

var testRecord = func() academia.Record {
	record := academia.Record{
		StudentInfo: academia.StudentInfo{
			"registration_number": "RA2111003010001",
			"name":                "JANE DOE",
		},
		Attendance: academia.Attendance{
			Courses: map[string]academia.CourseAttendance{
				"21CSC301T": {CourseTitle: "Formal Language and Automata", HoursConducted: 40, HoursAbsent: 4, AttendancePercentage: 90},
				"21CSC304J": {CourseTitle: "Compiler Design", HoursConducted: 30, HoursAbsent: 9, AttendancePercentage: 70},
			},
			OverallAttendance:   82.86,
			TotalHoursConducted: 70,
			TotalHoursAbsent:    13,
		},
		Marks: academia.Marks{
			"21CSC301T": {CourseType: "Theory", Tests: []academia.Test{
				{TestName: "FT-I", ObtainedMarks: 4.5, MaxMarks: 5, Percentage: 90},
			}},
			"21CSC304J": {CourseType: "Practical", Tests: []academia.Test{}},
		},
	}
	record.Summary = academia.BuildSummary(record)
	return record
}()

func TestFilterRecord(t *testing.T) {
	require.Equal(t, testRecord, FilterRecord(testRecord, ""))

	filtered := FilterRecord(testRecord, "compiler desgin")
	require.Len(t, filtered.Attendance.Courses, 1)
	require.Contains(t, filtered.Attendance.Courses, "21CSC304J")
	require.Len(t, filtered.Marks, 1)
	require.Contains(t, filtered.Marks, "21CSC304J")
	require.Equal(t, 1, filtered.Summary.CourseCount)

	filtered = FilterRecord(testRecord, "automata")
	require.Contains(t, filtered.Attendance.Courses, "21CSC301T")
	require.Contains(t, filtered.Marks, "21CSC301T")
	require.NotContains(t, filtered.Marks, "21CSC304J")

	// the original is untouched
	require.Len(t, testRecord.Attendance.Courses, 2)
}

func TestRenderRecord(t *testing.T) {
	var out bytes.Buffer
	RenderRecord(&out, testRecord)

	rendered := out.String()
	for _, expected := range []string{
		"RA2111003010001",
		"Formal Language and Automata",
		"skip 7",
		"attend 6",
		"82.86",
		"4.5 / 5",
	} {
		require.True(t, strings.Contains(rendered, expected), "missing %q in\n%s", expected, rendered)
	}
}

func TestRenderHistory(t *testing.T) {
	var out bytes.Buffer
	RenderHistory(&out, []attendancesnapshots.Course{
		{Course: "21CSC301T", Snapshots: []attendancesnapshots.Snapshot{
			{Time: 1723435200, Percentage: 90, HoursConducted: 40, HoursAbsent: 4},
		}},
		{Course: "21MAB302T", Snapshots: []attendancesnapshots.Snapshot{
			{Time: 1723435200, Percentage: 100, HoursConducted: 30},
		}},
	}, "21CSC301T")

	rendered := out.String()
	require.Contains(t, rendered, "21CSC301T")
	require.Contains(t, rendered, "2024-08-12 09:30")
	require.NotContains(t, rendered, "21MAB302T")
}
