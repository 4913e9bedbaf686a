package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lessons/internal/core"
	"lessons/internal/store"
)

func newService() *LessonService {
	return NewLessonService(store.New(nil), nil)
}

func lesson(day int, student string, status core.LessonStatus, paid core.PaidStatus) core.Lesson {
	return core.Lesson{
		Date:        core.NewDate(2025, time.May, day),
		StudentName: student,
		HourlyRate:  1000,
		Hours:       1,
		Status:      status,
		PaidStatus:  paid,
	}
}

func TestAddAndListLessons(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if err := svc.AddLesson(ctx, lesson(5, "Ann", core.StatusCompleted, core.PaidStatusPaid)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddLesson(ctx, lesson(6, "Boris", core.StatusPlanned, core.PaidStatusUnpaid)); err != nil {
		t.Fatalf("add: %v", err)
	}

	all := svc.ListLessons(ctx, core.Criteria{})
	if len(all) != 2 {
		t.Fatalf("got %d lessons, want 2", len(all))
	}

	completed := core.StatusCompleted
	got := svc.ListLessons(ctx, core.Criteria{Status: &completed})
	if len(got) != 1 || got[0].Lesson.StudentName != "Ann" {
		t.Fatalf("filter result %+v", got)
	}
}

// A filtered listing must report each lesson's position in the full ledger,
// since edit and delete address lessons by that position.
func TestListLessonsKeepsStorePositions(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if err := svc.AddLesson(ctx, lesson(5, "Ann", core.StatusCompleted, core.PaidStatusPaid)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddLesson(ctx, lesson(6, "Boris", core.StatusPlanned, core.PaidStatusUnpaid)); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := svc.ListLessons(ctx, core.Criteria{StudentName: "Boris"})
	if len(got) != 1 || got[0].Index != 1 {
		t.Fatalf("filtered Boris row = %+v, want ledger index 1", got)
	}

	if err := svc.DeleteLesson(ctx, got[0].Index); err != nil {
		t.Fatalf("delete: %v", err)
	}
	remaining := svc.ListLessons(ctx, core.Criteria{})
	if len(remaining) != 1 || remaining[0].Lesson.StudentName != "Ann" {
		t.Fatalf("wrong lesson deleted, ledger = %+v", remaining)
	}
}

func TestAddLessonRejectsInvalid(t *testing.T) {
	svc := newService()
	bad := lesson(5, "", core.StatusCompleted, core.PaidStatusPaid)
	if err := svc.AddLesson(context.Background(), bad); !errors.Is(err, core.ErrEmptyStudentName) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEditLesson(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if err := svc.AddLesson(ctx, lesson(5, "Ann", core.StatusPlanned, core.PaidStatusUnpaid)); err != nil {
		t.Fatalf("add: %v", err)
	}
	edited := lesson(5, "Ann", core.StatusCompleted, core.PaidStatusPaid)
	if err := svc.EditLesson(ctx, 0, edited); err != nil {
		t.Fatalf("edit: %v", err)
	}

	all := svc.ListLessons(ctx, core.Criteria{})
	if all[0].Lesson != edited {
		t.Fatalf("got %+v, want %+v", all[0].Lesson, edited)
	}

	if err := svc.EditLesson(ctx, 5, edited); !errors.Is(err, store.ErrIndexOutOfRange) {
		t.Fatalf("expected index error, got %v", err)
	}
}

func TestDeleteLesson(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if err := svc.AddLesson(ctx, lesson(5, "Ann", core.StatusCompleted, core.PaidStatusPaid)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.DeleteLesson(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := svc.ListLessons(ctx, core.Criteria{}); len(got) != 0 {
		t.Fatalf("ledger not empty: %+v", got)
	}
	if err := svc.DeleteLesson(ctx, 0); !errors.Is(err, store.ErrIndexOutOfRange) {
		t.Fatalf("expected index error, got %v", err)
	}
}

func TestSummarizeThroughService(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, l := range []core.Lesson{
		lesson(5, "Ann", core.StatusCompleted, core.PaidStatusPaid),
		lesson(12, "Ann", core.StatusCompleted, core.PaidStatusPaid),
		lesson(20, "Ann", core.StatusPlanned, core.PaidStatusUnpaid),
	} {
		if err := svc.AddLesson(ctx, l); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	rows := svc.Summarize(ctx, core.Month{Year: 2025, Month: time.May}, core.SummaryFilter{})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want Ann + TOTAL", len(rows))
	}
	if rows[0].LessonHours != 2 || rows[0].PaidStatus != core.SummaryPaid {
		t.Fatalf("ann row %+v", rows[0])
	}
	if rows[1].StudentName != core.TotalRowName {
		t.Fatalf("TOTAL not last: %+v", rows)
	}
}

func TestClassifyMonthThroughService(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if err := svc.AddLesson(ctx, lesson(5, "Ann", core.StatusCompleted, core.PaidStatusPaid)); err != nil {
		t.Fatalf("add: %v", err)
	}

	days := svc.ClassifyMonth(ctx, core.Month{Year: 2025, Month: time.May})
	if days[5] != core.DayCompletedPaid {
		t.Fatalf("day 5 = %v, want COMPLETED_PAID", days[5])
	}
	if got := svc.ClassifyDay(ctx, core.NewDate(2025, time.May, 5)); got != core.DayCompletedPaid {
		t.Fatalf("classify day = %v", got)
	}
}

func TestSuggest(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, l := range []core.Lesson{
		lesson(5, "Boris", core.StatusCompleted, core.PaidStatusPaid),
		lesson(5, "Ann", core.StatusCompleted, core.PaidStatusPaid),
		lesson(6, "Ann", core.StatusPlanned, core.PaidStatusUnpaid),
	} {
		if err := svc.AddLesson(ctx, l); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got := svc.Suggest(ctx)
	if len(got.Students) != 2 || got.Students[0] != "Ann" || got.Students[1] != "Boris" {
		t.Fatalf("students %v", got.Students)
	}
	if len(got.Dates) != 2 || len(got.Rates) != 1 || len(got.Hours) != 1 {
		t.Fatalf("suggestions %+v", got)
	}
}
