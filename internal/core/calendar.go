package core

// Day display categories, ordered here from highest to lowest priority.
const (
	DayBothPaid        DayCategory = "BOTH_PAID"
	DayMixed           DayCategory = "MIXED"
	DayCompletedPaid   DayCategory = "COMPLETED_PAID"
	DayPlannedPaid     DayCategory = "PLANNED_PAID"
	DayCompletedUnpaid DayCategory = "COMPLETED_UNPAID"
	DayPlannedUnpaid   DayCategory = "PLANNED_UNPAID"
	DayToday           DayCategory = "TODAY"
	DayPlain           DayCategory = "PLAIN"
)

type DayCategory string

type dayFlags struct {
	planned         bool
	completed       bool
	plannedPaid     bool
	completedPaid   bool
	plannedUnpaid   bool
	completedUnpaid bool
}

// dayRules is the fixed visual-priority policy: fully paid and resolved days
// outrank everything, mixed lifecycle outranks single-status, and an unpaid
// completed lesson outranks an unpaid planned one. Rules are evaluated top to
// bottom and the first match wins.
var dayRules = []struct {
	category DayCategory
	matches  func(f dayFlags) bool
}{
	{DayBothPaid, func(f dayFlags) bool { return f.plannedPaid && f.completedPaid }},
	{DayMixed, func(f dayFlags) bool { return f.planned && f.completed }},
	{DayCompletedPaid, func(f dayFlags) bool { return f.completedPaid }},
	{DayPlannedPaid, func(f dayFlags) bool { return f.plannedPaid }},
	{DayCompletedUnpaid, func(f dayFlags) bool { return f.completedUnpaid }},
	{DayPlannedUnpaid, func(f dayFlags) bool { return f.plannedUnpaid }},
}

// ClassifyDay maps a date to exactly one display category, from the lessons
// scheduled on it. Dates with no lessons fall back to Today or Plain.
func ClassifyDay(lessons []Lesson, day Date, today Date) DayCategory {
	var f dayFlags
	for _, l := range lessons {
		if !l.Date.Equal(day) {
			continue
		}
		planned := l.Status == StatusPlanned
		paid := l.PaidStatus == PaidStatusPaid
		f.planned = f.planned || planned
		f.completed = f.completed || !planned
		f.plannedPaid = f.plannedPaid || (planned && paid)
		f.completedPaid = f.completedPaid || (!planned && paid)
		f.plannedUnpaid = f.plannedUnpaid || (planned && !paid)
		f.completedUnpaid = f.completedUnpaid || (!planned && !paid)
	}

	for _, rule := range dayRules {
		if rule.matches(f) {
			return rule.category
		}
	}
	if day.Equal(today) {
		return DayToday
	}
	return DayPlain
}

// ClassifyMonth classifies every day of the month in one pass, keyed by day
// of month. The calendar grid renders a whole month at a time.
func ClassifyMonth(lessons []Lesson, month Month, today Date) map[int]DayCategory {
	out := make(map[int]DayCategory, month.Days())
	for day := 1; day <= month.Days(); day++ {
		date := NewDate(month.Year, month.Month, day)
		out[day] = ClassifyDay(lessons, date, today)
	}
	return out
}
