// internal/academics/calendar.go
package academics

import "time"

// MonthGrid is a calendar month laid out for a Sunday-first grid: leading
// blanks for the days before the 1st, then the day numbers. Blank cells
// are zero.
type MonthGrid struct {
	Year          int    `json:"year"`
	Month         string `json:"month"`
	LeadingBlanks int    `json:"leading_blanks"`
	DaysInMonth   int    `json:"days_in_month"`
	Cells         []int  `json:"cells"`
}

// BuildMonthGrid lays out one calendar month.
func BuildMonthGrid(year int, month time.Month) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	blanks := int(first.Weekday())

	cells := make([]int, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, 0)
	}
	for d := 1; d <= days; d++ {
		cells = append(cells, d)
	}

	return MonthGrid{
		Year:          year,
		Month:         month.String(),
		LeadingBlanks: blanks,
		DaysInMonth:   days,
		Cells:         cells,
	}
}
