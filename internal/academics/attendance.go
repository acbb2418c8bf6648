// internal/academics/attendance.go
package academics

import "math"

// SubjectAttendance is one subject's attended/held class counts.
type SubjectAttendance struct {
	Subject  string `json:"subject"`
	Attended int    `json:"attended"`
	Held     int    `json:"held"`
}

// Percent returns the attendance percentage rounded to two decimals.
// A subject with no classes held counts as 0.
func (a SubjectAttendance) Percent() float64 {
	if a.Held <= 0 {
		return 0
	}
	return math.Round(float64(a.Attended)/float64(a.Held)*10000) / 100
}

// OverallPercent averages attendance across all held classes, weighted by
// class count rather than per-subject percentages.
func OverallPercent(subjects []SubjectAttendance) float64 {
	attended, held := 0, 0
	for _, s := range subjects {
		attended += s.Attended
		held += s.Held
	}
	return SubjectAttendance{Attended: attended, Held: held}.Percent()
}

// DefaultAttendance is the demo semester's attendance sheet.
func DefaultAttendance() []SubjectAttendance {
	return []SubjectAttendance{
		{Subject: "Data Structures", Attended: 38, Held: 42},
		{Subject: "Operating Systems", Attended: 35, Held: 40},
		{Subject: "Database Systems", Attended: 40, Held: 44},
		{Subject: "Computer Networks", Attended: 30, Held: 38},
		{Subject: "Discrete Mathematics", Attended: 33, Held: 36},
	}
}
