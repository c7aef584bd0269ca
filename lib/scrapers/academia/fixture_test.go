package academia

import _ "embed"

//go:embed testdata/attendance_page.html
var fixtureAttendancePage string
