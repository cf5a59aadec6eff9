package history

import "time"

// MonthStart truncates t to midnight on the first of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthGrid lays out month as calendar cells starting on Sunday. Leading
// cells before the first day are zero.
func MonthGrid(month time.Time) []int {
	first := MonthStart(month)
	days := first.AddDate(0, 1, -1).Day()
	cells := make([]int, int(first.Weekday()), int(first.Weekday())+days)
	for d := 1; d <= days; d++ {
		cells = append(cells, d)
	}
	return cells
}

// NextMonthDisabled reports whether moving past month would go beyond now.
func NextMonthDisabled(month, now time.Time) bool {
	m := MonthStart(month)
	n := MonthStart(now.In(month.Location()))
	return !m.Before(n)
}
