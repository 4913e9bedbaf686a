// Package services orchestrates ledger operations across the store and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"lessons/internal/amqp"
	"lessons/internal/core"
	"lessons/internal/store"
)

// IndexedLesson pairs a lesson with its position in the full ledger. Edit
// and delete commands address lessons by that position, so filtered listings
// must carry it instead of the row's place within the filtered view.
type IndexedLesson struct {
	Index  int
	Lesson core.Lesson
}

// Suggestions holds the distinct values already present in the ledger, used
// to pre-fill entry forms.
type Suggestions struct {
	Students []string  `json:"students"`
	Dates    []string  `json:"dates"`
	Rates    []float64 `json:"rates"`
	Hours    []float64 `json:"hours"`
}

// LessonService is the application facade over the ledger store. The AMQP
// client is optional; without it mutations still commit, they just go
// unannounced.
type LessonService struct {
	store      *store.Store
	amqpClient *amqp.Client
}

func NewLessonService(s *store.Store, amqpClient *amqp.Client) *LessonService {
	return &LessonService{
		store:      s,
		amqpClient: amqpClient,
	}
}

// AddLesson validates, commits and announces a new lesson.
func (s *LessonService) AddLesson(ctx context.Context, lesson core.Lesson) error {
	index, err := s.store.Add(ctx, lesson)
	if err != nil {
		return fmt.Errorf("add lesson: %w", err)
	}

	s.publishEvent(ctx, store.ActionAdded, index, lesson)
	return nil
}

// EditLesson replaces the lesson at index.
func (s *LessonService) EditLesson(ctx context.Context, index int, lesson core.Lesson) error {
	if err := s.store.Update(ctx, index, lesson); err != nil {
		return fmt.Errorf("edit lesson: %w", err)
	}

	s.publishEvent(ctx, store.ActionUpdated, index, lesson)
	return nil
}

// DeleteLesson removes the lesson at index.
func (s *LessonService) DeleteLesson(ctx context.Context, index int) error {
	all := s.store.All()
	if index < 0 || index >= len(all) {
		return fmt.Errorf("delete lesson: %w: %d", store.ErrIndexOutOfRange, index)
	}
	lesson := all[index]

	if err := s.store.RemoveAt(ctx, index); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}

	s.publishEvent(ctx, store.ActionRemoved, index, lesson)
	return nil
}

// ListLessons returns the ledger filtered by the given criteria, in insertion
// order. Each row keeps its index in the full ledger.
func (s *LessonService) ListLessons(ctx context.Context, criteria core.Criteria) []IndexedLesson {
	all := s.store.All()
	out := make([]IndexedLesson, 0, len(all))
	for i, l := range all {
		if criteria.Matches(l) {
			out = append(out, IndexedLesson{Index: i, Lesson: l})
		}
	}
	return out
}

// Summarize builds the per-student monthly report.
func (s *LessonService) Summarize(ctx context.Context, month core.Month, filter core.SummaryFilter) []core.StudentSummary {
	return core.Summarize(s.store.All(), month, filter)
}

// ClassifyDay returns the display category for one calendar day.
func (s *LessonService) ClassifyDay(ctx context.Context, day core.Date) core.DayCategory {
	return core.ClassifyDay(s.store.All(), day, core.Today())
}

// ClassifyMonth classifies every day of the month for the calendar grid.
func (s *LessonService) ClassifyMonth(ctx context.Context, month core.Month) map[int]core.DayCategory {
	return core.ClassifyMonth(s.store.All(), month, core.Today())
}

// Suggest returns deduplicated, sorted values seen in the ledger.
func (s *LessonService) Suggest(ctx context.Context) Suggestions {
	all := s.store.All()

	students := make([]string, 0, len(all))
	dates := make([]string, 0, len(all))
	rates := make([]float64, 0, len(all))
	hours := make([]float64, 0, len(all))
	for _, l := range all {
		students = append(students, l.StudentName)
		dates = append(dates, l.Date.Format())
		rates = append(rates, l.HourlyRate)
		hours = append(hours, l.Hours)
	}

	return Suggestions{
		Students: dedupeSortedStrings(students),
		Dates:    dedupeSortedStrings(dates),
		Rates:    dedupeSortedFloats(rates),
		Hours:    dedupeSortedFloats(hours),
	}
}

func (s *LessonService) publishEvent(ctx context.Context, action string, index int, lesson core.Lesson) {
	if s.amqpClient == nil {
		return
	}

	msg := amqp.NewLessonEventMessage(action, index, amqp.LessonPayload{
		Date:        lesson.Date.Format(),
		StudentName: lesson.StudentName,
		HourlyRate:  lesson.HourlyRate,
		Hours:       lesson.Hours,
		Status:      string(lesson.Status),
		PaidStatus:  string(lesson.PaidStatus),
	})
	if err := s.amqpClient.PublishLessonEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish lesson event",
			"action", action, "index", index, "error", err)
		// Don't fail the request, the lesson is committed locally
	}
}

// Close closes the AMQP connection if one exists.
func (s *LessonService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp: %w", err)
		}
	}
	return nil
}

func dedupeSortedStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func dedupeSortedFloats(in []float64) []float64 {
	seen := make(map[float64]struct{}, len(in))
	out := make([]float64, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
