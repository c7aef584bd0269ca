package academia

import (
	"fmt"
	"sort"
)

const (
	// minimum attendance the university requires
	attendanceThreshold = 75
	// skipping is only suggested down to this, not to the bare minimum
	skipThreshold = 76
)

// CalculateMargin tells how many hours can be missed (at or above the
// threshold) or must be attended (below it) given the hours attended so far.
func CalculateMargin(attended, conducted int) Margin {
	if conducted <= 0 {
		return Margin{Message: "No classes have been conducted yet."}
	}

	current := float64(attended) / float64(conducted) * 100
	if attended*100 < attendanceThreshold*conducted {
		// smallest n with (attended+n)/(conducted+n) >= 75%
		n := 3*conducted - 4*attended
		return Margin{
			Hours: n,
			Message: fmt.Sprintf(
				"You need to attend %d more hours to get to %d / %d = %.2f%%",
				n, attended+n, conducted+n,
				float64(attended+n)/float64(conducted+n)*100,
			),
		}
	}
	if attended*100 < skipThreshold*conducted {
		return Margin{
			Hours: 0,
			Message: fmt.Sprintf(
				"Your attendance is already between %d%% and %d%% at %.2f%%. Maintain this level to stay above %d%%.",
				attendanceThreshold, skipThreshold, current, attendanceThreshold,
			),
		}
	}

	// largest n with attended/(conducted+n) >= 76%
	n := (100*attended - skipThreshold*conducted) / skipThreshold
	return Margin{
		Hours: n,
		Message: fmt.Sprintf(
			"You can skip %d more hours to get to %d / %d = %.2f%%",
			n, attended, conducted+n,
			float64(attended)/float64(conducted+n)*100,
		),
	}
}

func BuildSummary(r Record) Summary {
	summary := Summary{
		CourseCount:   len(r.Attendance.Courses),
		LowAttendance: []string{},
		Margins:       map[string]Margin{},
	}

	for code, course := range r.Attendance.Courses {
		attended := course.HoursAttended()
		summary.Margins[code] = CalculateMargin(attended, course.HoursConducted)
		if course.HoursConducted > 0 && attended*100 < attendanceThreshold*course.HoursConducted {
			summary.LowAttendance = append(summary.LowAttendance, code)
		}
	}
	sort.Strings(summary.LowAttendance)

	for _, course := range r.Marks {
		summary.TestCount += len(course.Tests)
	}

	return summary
}
