// Package worker consumes lesson events from AMQP and mirrors them to an
// external sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"lessons/internal/amqp"
	"lessons/internal/core"
	"lessons/internal/sheets"
	"lessons/internal/store"
)

// MirrorWorker appends added lessons to the configured sheet. Updates and
// removals are logged and skipped: the mirror is an append-only audit trail,
// not a replica. Besides consuming events it periodically reconciles against
// the ledger snapshot, so lessons whose events were lost while the worker was
// down still reach the sheet. Delivery is at least once.
type MirrorWorker struct {
	appender sheets.LessonAppender
	repo     store.Repository

	mu     sync.Mutex
	counts map[core.Lesson]int

	mirrored atomic.Int64
	skipped  atomic.Int64
}

// NewMirrorWorker builds a worker. repo may be nil, which disables the
// reconciliation pass and leaves pure event consumption.
func NewMirrorWorker(appender sheets.LessonAppender, repo store.Repository) *MirrorWorker {
	return &MirrorWorker{
		appender: appender,
		repo:     repo,
		counts:   make(map[core.Lesson]int),
	}
}

// HandleEvent processes one lesson event from AMQP.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.LessonEventMessage) error {
	if msg.Action != store.ActionAdded {
		w.skipped.Add(1)
		slog.InfoContext(ctx, "Skipping non-append event",
			"action", msg.Action,
			"student", msg.Lesson.StudentName)
		return nil
	}

	lesson, err := lessonFromPayload(msg.Lesson)
	if err != nil {
		// A payload that cannot be decoded will never succeed on retry.
		slog.ErrorContext(ctx, "Dropping undecodable lesson event", "error", err)
		return nil
	}

	if err := w.appender.AppendLesson(ctx, lesson); err != nil {
		return fmt.Errorf("mirror lesson: %w", err)
	}

	w.recordMirrored(lesson)
	return nil
}

// SyncLedger reconciles the sheet against the ledger snapshot, appending any
// lesson not mirrored yet. Equal lessons are counted by occurrence so
// duplicate entries in the ledger each get a row.
func (w *MirrorWorker) SyncLedger(ctx context.Context) error {
	if w.repo == nil {
		return nil
	}

	lessons, err := w.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	want := make(map[core.Lesson]int, len(lessons))
	for _, l := range lessons {
		want[l]++
	}

	appended := 0
	for _, l := range lessons {
		if !w.claimMissing(l, want[l]) {
			continue
		}
		if err := w.appender.AppendLesson(ctx, l); err != nil {
			w.releaseClaim(l)
			return fmt.Errorf("mirror lesson: %w", err)
		}
		w.mirrored.Add(1)
		appended++
	}

	if appended > 0 {
		slog.InfoContext(ctx, "Ledger reconciliation appended missing lessons", "count", appended)
	}
	return nil
}

// Run reconciles once at startup, then consumes events while periodically
// re-running the reconciliation pass, until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, client *amqp.Client, syncInterval time.Duration) error {
	if err := w.SyncLedger(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup ledger reconciliation failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeLessonEvents(ctx, func(msg *amqp.LessonEventMessage) error {
			return w.HandleEvent(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(syncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.SyncLedger(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic ledger reconciliation failed", "error", err)
					continue
				}
				slog.InfoContext(ctx, "Mirror worker stats",
					"mirrored", w.mirrored.Load(),
					"skipped", w.skipped.Load())
			}
		}
	})

	return g.Wait()
}

func (w *MirrorWorker) recordMirrored(l core.Lesson) {
	w.mu.Lock()
	w.counts[l]++
	w.mu.Unlock()
	w.mirrored.Add(1)
}

// claimMissing reserves one mirror slot for l when fewer than want copies
// have been mirrored so far.
func (w *MirrorWorker) claimMissing(l core.Lesson, want int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.counts[l] >= want {
		return false
	}
	w.counts[l]++
	return true
}

func (w *MirrorWorker) releaseClaim(l core.Lesson) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[l]--
}

func lessonFromPayload(p amqp.LessonPayload) (core.Lesson, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Lesson{}, err
	}
	status, err := core.ParseLessonStatus(p.Status)
	if err != nil {
		return core.Lesson{}, err
	}
	paid, err := core.ParsePaidStatus(p.PaidStatus)
	if err != nil {
		return core.Lesson{}, err
	}

	lesson := core.Lesson{
		Date:        date,
		StudentName: p.StudentName,
		HourlyRate:  p.HourlyRate,
		Hours:       p.Hours,
		Status:      status,
		PaidStatus:  paid,
	}
	if err := lesson.Validate(); err != nil {
		return core.Lesson{}, err
	}
	return lesson, nil
}
