// Package store holds the in-memory lesson ledger and keeps it in sync with a
// durable repository. All reads and mutations go through Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lessons/internal/core"
)

var (
	ErrIndexOutOfRange = errors.New("lesson index out of range")
	ErrLessonNotFound  = errors.New("lesson not found")
)

// Repository persists the full ledger snapshot. Implementations live in
// internal/xmlfile and internal/storage.
type Repository interface {
	Load(ctx context.Context) ([]core.Lesson, error)
	Save(ctx context.Context, lessons []core.Lesson) error
}

// Event actions emitted to subscribed listeners.
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

// Event describes one committed mutation.
type Event struct {
	Action string
	Index  int
	Lesson core.Lesson
}

type Listener func(Event)

// Store is the authoritative in-memory ledger. Every mutation persists the
// whole snapshot before it is committed: when Save fails the in-memory state
// is rolled back and the error returned, so memory and disk never diverge.
type Store struct {
	mu        sync.RWMutex
	lessons   []core.Lesson
	repo      Repository
	listeners []Listener
}

// New builds a store backed by repo. A nil repo keeps the ledger purely in
// memory, which the tests use.
func New(repo Repository) *Store {
	return &Store{repo: repo}
}

// LoadInitial replaces the ledger with the repository snapshot. On error the
// ledger stays empty and the error is returned to the caller, who decides
// whether to continue with an empty ledger.
func (s *Store) LoadInitial(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	lessons, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading lessons: %w", err)
	}

	s.mu.Lock()
	s.lessons = lessons
	s.mu.Unlock()
	return nil
}

// All returns a copy of the ledger in insertion order.
func (s *Store) All() []core.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Lesson, len(s.lessons))
	copy(out, s.lessons)
	return out
}

// Len reports the current number of lessons.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lessons)
}

// Add appends a lesson and persists the new snapshot, returning the index
// the lesson was committed at.
func (s *Store) Add(ctx context.Context, lesson core.Lesson) (int, error) {
	if err := lesson.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.lessons = append(s.lessons, lesson)
	index := len(s.lessons) - 1
	if err := s.persistLocked(ctx); err != nil {
		s.lessons = s.lessons[:index]
		s.mu.Unlock()
		return 0, err
	}
	s.mu.Unlock()

	s.notify(Event{Action: ActionAdded, Index: index, Lesson: lesson})
	return index, nil
}

// Update replaces the lesson at index and persists the new snapshot.
func (s *Store) Update(ctx context.Context, index int, lesson core.Lesson) error {
	if err := lesson.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if index < 0 || index >= len(s.lessons) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	previous := s.lessons[index]
	s.lessons[index] = lesson
	if err := s.persistLocked(ctx); err != nil {
		s.lessons[index] = previous
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(Event{Action: ActionUpdated, Index: index, Lesson: lesson})
	return nil
}

// Remove deletes the first lesson equal to the given one and persists the new
// snapshot. Removing a lesson that is not in the ledger is an error.
func (s *Store) Remove(ctx context.Context, lesson core.Lesson) error {
	s.mu.Lock()
	index := -1
	for i, l := range s.lessons {
		if l == lesson {
			index = i
			break
		}
	}
	if index == -1 {
		s.mu.Unlock()
		return ErrLessonNotFound
	}
	s.lessons = append(s.lessons[:index], s.lessons[index+1:]...)
	if err := s.persistLocked(ctx); err != nil {
		s.lessons = append(s.lessons[:index], append([]core.Lesson{lesson}, s.lessons[index:]...)...)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(Event{Action: ActionRemoved, Index: index, Lesson: lesson})
	return nil
}

// RemoveAt deletes the lesson at index and persists the new snapshot.
func (s *Store) RemoveAt(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.lessons) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	lesson := s.lessons[index]
	s.lessons = append(s.lessons[:index], s.lessons[index+1:]...)
	if err := s.persistLocked(ctx); err != nil {
		s.lessons = append(s.lessons[:index], append([]core.Lesson{lesson}, s.lessons[index:]...)...)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(Event{Action: ActionRemoved, Index: index, Lesson: lesson})
	return nil
}

// Flush persists the current snapshot without mutating it. Called on
// shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Subscribe registers a listener for committed mutations. Listeners run
// outside the store lock and must not block for long.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	snapshot := make([]core.Lesson, len(s.lessons))
	copy(snapshot, s.lessons)
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("saving lessons: %w", err)
	}
	return nil
}

func (s *Store) notify(e Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, l := range listeners {
		l(e)
	}
}
