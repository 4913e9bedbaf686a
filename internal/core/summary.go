package core

import "sort"

// TotalRowName is the student-name sentinel of the grand-total summary row.
const TotalRowName = "TOTAL"

const (
	SummaryPaid   SummaryPaidStatus = "PAID"
	SummaryUnpaid SummaryPaidStatus = "UNPAID"
	SummaryMixed  SummaryPaidStatus = "MIXED"
)

type (
	SummaryPaidStatus string

	// StudentSummary is one row of the monthly report: either a per-student
	// aggregate or the TOTAL sentinel row.
	StudentSummary struct {
		StudentName string
		LessonHours float64
		TotalCost   float64
		PaidStatus  SummaryPaidStatus
	}

	// SummaryFilter narrows the report to one student and/or one payment
	// status. Zero values match everything.
	SummaryFilter struct {
		StudentName string
		PaidStatus  *PaidStatus
	}
)

// Summarize builds the per-student monthly report. Only completed lessons
// inside the month count; planned lessons represent not-yet-rendered service
// and are excluded from totals. When at least one student row exists, a TOTAL
// row computed across the full selected set is appended last. An empty month
// yields an empty report.
func Summarize(lessons []Lesson, month Month, filter SummaryFilter) []StudentSummary {
	var selected []Lesson
	for _, l := range lessons {
		if l.Status != StatusCompleted || !month.Contains(l.Date) {
			continue
		}
		if filter.StudentName != "" && l.StudentName != filter.StudentName {
			continue
		}
		if filter.PaidStatus != nil && l.PaidStatus != *filter.PaidStatus {
			continue
		}
		selected = append(selected, l)
	}
	if len(selected) == 0 {
		return nil
	}

	groups := make(map[string][]Lesson)
	names := make([]string, 0)
	for _, l := range selected {
		if _, seen := groups[l.StudentName]; !seen {
			names = append(names, l.StudentName)
		}
		groups[l.StudentName] = append(groups[l.StudentName], l)
	}
	sort.Strings(names)

	rows := make([]StudentSummary, 0, len(names)+1)
	for _, name := range names {
		rows = append(rows, summarizeGroup(name, groups[name]))
	}
	// The TOTAL row sums the full selected set, not the per-student rows,
	// so it cannot drift from them under filtering.
	rows = append(rows, summarizeGroup(TotalRowName, selected))
	return rows
}

func summarizeGroup(name string, lessons []Lesson) StudentSummary {
	row := StudentSummary{StudentName: name}
	allPaid, allUnpaid := true, true
	for _, l := range lessons {
		row.LessonHours += l.Hours
		row.TotalCost += l.TotalCost()
		if l.PaidStatus == PaidStatusPaid {
			allUnpaid = false
		} else {
			allPaid = false
		}
	}
	switch {
	case allPaid:
		row.PaidStatus = SummaryPaid
	case allUnpaid:
		row.PaidStatus = SummaryUnpaid
	default:
		row.PaidStatus = SummaryMixed
	}
	return row
}

// Summary sort columns.
const (
	SortByStudent SummaryColumn = iota
	SortByHours
	SortByCost
	SortByPaidStatus
)

type SummaryColumn int

// SortSummaries sorts report rows by the given column. The TOTAL sentinel row
// is excluded from the comparison and re-appended last, whatever the column
// and direction.
func SortSummaries(rows []StudentSummary, column SummaryColumn, ascending bool) []StudentSummary {
	out := make([]StudentSummary, 0, len(rows))
	var total *StudentSummary
	for _, r := range rows {
		if r.StudentName == TotalRowName {
			r := r
			total = &r
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		less := lessByColumn(out[i], out[j], column)
		if ascending {
			return less
		}
		return lessByColumn(out[j], out[i], column)
	})

	if total != nil {
		out = append(out, *total)
	}
	return out
}

func lessByColumn(a, b StudentSummary, column SummaryColumn) bool {
	switch column {
	case SortByHours:
		return a.LessonHours < b.LessonHours
	case SortByCost:
		return a.TotalCost < b.TotalCost
	case SortByPaidStatus:
		return a.PaidStatus < b.PaidStatus
	default:
		return a.StudentName < b.StudentName
	}
}
