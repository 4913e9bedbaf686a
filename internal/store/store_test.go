package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"lessons/internal/core"
)

type fakeRepo struct {
	saved    [][]core.Lesson
	loadData []core.Lesson
	loadErr  error
	saveErr  error
}

func (f *fakeRepo) Load(ctx context.Context) ([]core.Lesson, error) {
	return f.loadData, f.loadErr
}

func (f *fakeRepo) Save(ctx context.Context, lessons []core.Lesson) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	snapshot := make([]core.Lesson, len(lessons))
	copy(snapshot, lessons)
	f.saved = append(f.saved, snapshot)
	return nil
}

func sampleLesson(day int, student string) core.Lesson {
	return core.Lesson{
		Date:        core.NewDate(2025, time.May, day),
		StudentName: student,
		HourlyRate:  1000,
		Hours:       1,
		Status:      core.StatusCompleted,
		PaidStatus:  core.PaidStatusUnpaid,
	}
}

func TestAddPersistsSnapshot(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo)
	ctx := context.Background()

	if _, err := s.Add(ctx, sampleLesson(5, "Ann")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add(ctx, sampleLesson(6, "Boris")); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(repo.saved))
	}
	if last := repo.saved[1]; len(last) != 2 || last[1].StudentName != "Boris" {
		t.Fatalf("unexpected snapshot %+v", last)
	}
}

func TestAddReturnsCommittedIndex(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo)
	ctx := context.Background()

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	for want, student := range []string{"Ann", "Boris", "Clara"} {
		index, err := s.Add(ctx, sampleLesson(5, student))
		if err != nil {
			t.Fatalf("add %s: %v", student, err)
		}
		if index != want {
			t.Fatalf("%s committed at %d, want %d", student, index, want)
		}
		if events[want].Index != index {
			t.Fatalf("event index %d does not match returned index %d", events[want].Index, index)
		}
	}
}

func TestAddRejectsInvalidLesson(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo)

	bad := sampleLesson(5, "")
	if _, err := s.Add(context.Background(), bad); !errors.Is(err, core.ErrEmptyStudentName) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Len() != 0 || len(repo.saved) != 0 {
		t.Fatalf("invalid lesson must not reach the ledger")
	}
}

func TestAddRollsBackOnSaveFailure(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("disk full")}
	s := New(repo)

	if _, err := s.Add(context.Background(), sampleLesson(5, "Ann")); err == nil {
		t.Fatal("expected save error")
	}
	if s.Len() != 0 {
		t.Fatalf("failed add must roll back, ledger has %d lessons", s.Len())
	}
}

func TestUpdateRollsBackOnSaveFailure(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo)
	ctx := context.Background()

	original := sampleLesson(5, "Ann")
	if _, err := s.Add(ctx, original); err != nil {
		t.Fatalf("add: %v", err)
	}

	repo.saveErr = errors.New("disk full")
	if err := s.Update(ctx, 0, sampleLesson(6, "Boris")); err == nil {
		t.Fatal("expected save error")
	}
	if got := s.All()[0]; got != original {
		t.Fatalf("failed update must roll back, got %+v", got)
	}
}

func TestUpdateOutOfRange(t *testing.T) {
	s := New(nil)
	err := s.Update(context.Background(), 3, sampleLesson(5, "Ann"))
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("got %v, want ErrIndexOutOfRange", err)
	}
}

func TestRemoveByValue(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo)
	ctx := context.Background()

	ann := sampleLesson(5, "Ann")
	boris := sampleLesson(6, "Boris")
	for _, l := range []core.Lesson{ann, boris} {
		if _, err := s.Add(ctx, l); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if err := s.Remove(ctx, ann); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if all := s.All(); len(all) != 1 || all[0] != boris {
		t.Fatalf("unexpected ledger %+v", all)
	}
	if err := s.Remove(ctx, ann); !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("got %v, want ErrLessonNotFound", err)
	}
}

func TestRemoveRollsBackOnSaveFailure(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo)
	ctx := context.Background()

	ann := sampleLesson(5, "Ann")
	boris := sampleLesson(6, "Boris")
	for _, l := range []core.Lesson{ann, boris} {
		if _, err := s.Add(ctx, l); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	repo.saveErr = errors.New("disk full")
	if err := s.Remove(ctx, ann); err == nil {
		t.Fatal("expected save error")
	}
	if all := s.All(); len(all) != 2 || all[0] != ann || all[1] != boris {
		t.Fatalf("failed remove must restore order, got %+v", all)
	}
}

func TestLoadInitial(t *testing.T) {
	repo := &fakeRepo{loadData: []core.Lesson{sampleLesson(5, "Ann")}}
	s := New(repo)

	if err := s.LoadInitial(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 lesson, got %d", s.Len())
	}
}

func TestLoadInitialErrorKeepsLedgerEmpty(t *testing.T) {
	repo := &fakeRepo{loadErr: errors.New("corrupt file")}
	s := New(repo)

	if err := s.LoadInitial(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if s.Len() != 0 {
		t.Fatalf("ledger must stay empty on load error")
	}
}

func TestListenersSeeCommittedMutationsOnly(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo)
	ctx := context.Background()

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	lesson := sampleLesson(5, "Ann")
	if _, err := s.Add(ctx, lesson); err != nil {
		t.Fatalf("add: %v", err)
	}

	repo.saveErr = errors.New("disk full")
	if err := s.Update(ctx, 0, sampleLesson(6, "Boris")); err == nil {
		t.Fatal("expected save error")
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Action != ActionAdded || events[0].Index != 0 || events[0].Lesson != lesson {
		t.Fatalf("unexpected event %+v", events[0])
	}
}
