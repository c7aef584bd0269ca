package academia

// StudentInfo holds the label/value pairs of the profile table, keyed by the
// normalized label.
type StudentInfo map[string]string

const (
	registrationNumberKey = "registration_number"
	photoKey              = "photo-id"
	photoUrlKey           = "photo_url"
	enrollmentKey         = "enrollment_status_/_doe"
	enrollmentStatusKey   = "enrollment_status"
	enrollmentDateKey     = "enrollment_date"
)

type CourseAttendance struct {
	CourseTitle          string  `json:"course_title"`
	Category             string  `json:"category"`
	FacultyName          string  `json:"faculty_name"`
	Slot                 string  `json:"slot"`
	RoomNo               string  `json:"room_no"`
	HoursConducted       int     `json:"hours_conducted"`
	HoursAbsent          int     `json:"hours_absent"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// HoursAttended is never negative even if the portal reports more absences
// than conducted hours.
func (c CourseAttendance) HoursAttended() int {
	return max(c.HoursConducted-c.HoursAbsent, 0)
}

type Attendance struct {
	// keyed by course code
	Courses             map[string]CourseAttendance `json:"courses"`
	OverallAttendance   float64                     `json:"overall_attendance"`
	TotalHoursConducted int                         `json:"total_hours_conducted"`
	TotalHoursAbsent    int                         `json:"total_hours_absent"`
}

type Test struct {
	TestName      string  `json:"test_name"`
	ObtainedMarks float64 `json:"obtained_marks"`
	MaxMarks      float64 `json:"max_marks"`
	Percentage    float64 `json:"percentage"`
}

type CourseMarks struct {
	CourseType string `json:"course_type"`
	Tests      []Test `json:"tests"`
}

// Marks is keyed by course code.
type Marks map[string]CourseMarks

type Margin struct {
	// hours that can still be missed when at or above the threshold,
	// otherwise hours that must be attended to reach it
	Hours   int    `json:"hours"`
	Message string `json:"message"`
}

type Summary struct {
	CourseCount   int               `json:"course_count"`
	TestCount     int               `json:"test_count"`
	LowAttendance []string          `json:"low_attendance"`
	Margins       map[string]Margin `json:"margins"`
}

type Record struct {
	StudentInfo StudentInfo `json:"student_info"`
	Attendance  Attendance  `json:"attendance"`
	Marks       Marks       `json:"marks"`
	Summary     Summary     `json:"summary"`
}

// RegistrationNumber returns "" when the profile table did not have one.
func (r Record) RegistrationNumber() string {
	return r.StudentInfo[registrationNumberKey]
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
