package academia

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"academia-backend/lib/htmlutil"
	"academia-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrUnexpectedLayout = errors.New("unexpected page layout")

const (
	profileTableIdx    = 1
	attendanceTableIdx = 2
	marksTableIdx      = 3
)

// ParseAttendancePage parses the inner html of the attendance page's
// .mainDiv into a Record, the marks table is optional.
func ParseAttendancePage(ctx context.Context, content string) (Record, error) {
	ctx, span := tracer.Start(ctx, "ParseAttendancePage")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return Record{}, err
	}

	tables := doc.Find("table")
	span.SetAttributes(attribute.Int("tables", tables.Length()))
	if tables.Length() <= attendanceTableIdx {
		err := fmt.Errorf("%w: expected at least %d tables, found %d", ErrUnexpectedLayout, attendanceTableIdx+1, tables.Length())
		span.SetStatus(codes.Error, err.Error())
		return Record{}, err
	}

	attendance, err := parseAttendance(tables.Eq(attendanceTableIdx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse attendance")
		return Record{}, err
	}

	marks := Marks{}
	if tables.Length() > marksTableIdx {
		marks = parseMarks(tables.Eq(marksTableIdx))
	} else {
		span.AddEvent("marks table missing")
	}

	record := Record{
		StudentInfo: parseStudentInfo(tables.Eq(profileTableIdx)),
		Attendance:  attendance,
		Marks:       marks,
	}
	record.Summary = BuildSummary(record)
	return record, nil
}

// rows of a table, excluding the rows of tables nested inside it.
func ownRows(table *goquery.Selection) *goquery.Selection {
	if table.Length() == 0 {
		return table
	}
	root := table.Nodes[0]
	return table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		owner := row.Closest("table")
		return owner.Length() > 0 && owner.Nodes[0] == root
	})
}

func parseStudentInfo(table *goquery.Selection) StudentInfo {
	info := StudentInfo{}

	ownRows(table).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		key := textutil.LabelKey(htmlutil.StrippedText(cells.Eq(0)))
		if key == photoKey {
			info[photoUrlKey] = cells.Eq(1).Find("img").First().AttrOr("src", "")
			return
		}
		info[key] = htmlutil.StrippedText(cells.Eq(1))
	})

	if enrollment, ok := info[enrollmentKey]; ok {
		delete(info, enrollmentKey)
		status, date, _ := strings.Cut(enrollment, " / ")
		info[enrollmentStatusKey] = status
		info[enrollmentDateKey] = date
	}

	return info
}

var percentageRegex = regexp.MustCompile(`\d+\.\d+`)

func parseHours(cell *goquery.Selection, column string) (int, error) {
	text := htmlutil.StrippedText(cell)
	hours, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrUnexpectedLayout, column, text)
	}
	return hours, nil
}

func parseAttendance(table *goquery.Selection) (Attendance, error) {
	attendance := Attendance{Courses: map[string]CourseAttendance{}}

	rows := ownRows(table)
	// the first row is the header
	for i := 1; i < rows.Length(); i++ {
		cells := rows.Eq(i).ChildrenFiltered("td")
		if cells.Length() < 9 {
			continue
		}
		// the cell is "<code><br><type>", only the code is kept
		code := htmlutil.FirstLine(cells.Eq(0))

		conducted, err := parseHours(cells.Eq(6), "hours conducted")
		if err != nil {
			return Attendance{}, fmt.Errorf("course %s: %w", code, err)
		}
		absent, err := parseHours(cells.Eq(7), "hours absent")
		if err != nil {
			return Attendance{}, fmt.Errorf("course %s: %w", code, err)
		}

		percentage := 0.0
		match := percentageRegex.FindString(htmlutil.StrippedText(cells.Eq(8)))
		if match != "" {
			percentage, _ = strconv.ParseFloat(match, 64)
		}

		attendance.Courses[code] = CourseAttendance{
			CourseTitle:          htmlutil.StrippedText(cells.Eq(1)),
			Category:             htmlutil.StrippedText(cells.Eq(2)),
			FacultyName:          htmlutil.StrippedText(cells.Eq(3)),
			Slot:                 htmlutil.StrippedText(cells.Eq(4)),
			RoomNo:               htmlutil.StrippedText(cells.Eq(5)),
			HoursConducted:       conducted,
			HoursAbsent:          absent,
			AttendancePercentage: percentage,
		}
		attendance.TotalHoursConducted += conducted
		attendance.TotalHoursAbsent += absent
	}

	attendance.OverallAttendance = overallPercentage(attendance.TotalHoursConducted, attendance.TotalHoursAbsent)
	return attendance, nil
}

// overall attendance comes from the summed hours, not from averaging the
// per-course percentages.
func overallPercentage(conducted, absent int) float64 {
	if conducted <= 0 {
		return 0
	}
	return round2(float64(conducted-absent) / float64(conducted) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseMarks(table *goquery.Selection) Marks {
	marks := Marks{}

	rows := ownRows(table)
	for i := 1; i < rows.Length(); i++ {
		cells := rows.Eq(i).ChildrenFiltered("td")
		if cells.Length() < 3 {
			continue
		}

		tests := []Test{}
		cells.Eq(2).Find("table").First().Find("font").Each(func(_ int, font *goquery.Selection) {
			test, ok := parseTest(font)
			if ok {
				tests = append(tests, test)
			}
		})

		marks[htmlutil.StrippedText(cells.Eq(0))] = CourseMarks{
			CourseType: htmlutil.StrippedText(cells.Eq(1)),
			Tests:      tests,
		}
	}

	return marks
}

// parseTest reads a cell shaped like <font><strong>FT-I/5.00</strong><br>4.50</font>,
// anything else is not a test.
func parseTest(font *goquery.Selection) (Test, bool) {
	strong := font.Find("strong").First()
	if strong.Length() == 0 {
		return Test{}, false
	}
	label := htmlutil.StrippedText(strong)
	if strings.Count(label, "/") != 1 {
		return Test{}, false
	}
	name, maxText, _ := strings.Cut(label, "/")
	maxMarks, err := strconv.ParseFloat(strings.TrimSpace(maxText), 64)
	if err != nil || maxMarks <= 0 {
		return Test{}, false
	}

	obtainedText, ok := htmlutil.TextAfterBreak(font.Nodes[0])
	if !ok || obtainedText == "" {
		return Test{}, false
	}
	obtained, err := strconv.ParseFloat(obtainedText, 64)
	if err != nil {
		return Test{}, false
	}

	return Test{
		TestName:      strings.TrimSpace(name),
		ObtainedMarks: obtained,
		MaxMarks:      maxMarks,
		Percentage:    round2(obtained / maxMarks * 100),
	}, true
}
