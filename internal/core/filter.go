package core

// Criteria is a set of independent, optional ledger filters. Nil pointer
// fields and an empty student name match everything; active criteria are
// combined with logical AND.
type Criteria struct {
	OnDate      *Date
	Status      *LessonStatus
	PaidStatus  *PaidStatus
	StudentName string
}

// Matches reports whether the lesson satisfies every active criterion.
func (c Criteria) Matches(l Lesson) bool {
	if c.OnDate != nil && !l.Date.Equal(*c.OnDate) {
		return false
	}
	if c.Status != nil && l.Status != *c.Status {
		return false
	}
	if c.PaidStatus != nil && l.PaidStatus != *c.PaidStatus {
		return false
	}
	if c.StudentName != "" && l.StudentName != c.StudentName {
		return false
	}
	return true
}

// Filter returns the subsequence of lessons matching the criteria, preserving
// the order of the source collection.
func Filter(lessons []Lesson, c Criteria) []Lesson {
	out := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if c.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}
