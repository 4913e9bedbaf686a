// Package storage is the SQLite persistence backend. The ledger is small and
// snapshot-oriented, so Save replaces the whole table in one transaction and
// Load reads it back in position order.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"lessons/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the full ledger in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Lesson, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT lesson_date, student_name, hourly_rate, hours, status, paid_status
		 FROM lessons ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []core.Lesson
	for rows.Next() {
		var dateStr, student, status, paidStatus string
		var rate, hours float64
		if err := rows.Scan(&dateStr, &student, &rate, &hours, &status, &paidStatus); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}

		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("lesson date %q: %w", dateStr, err)
		}
		parsedStatus, err := core.ParseLessonStatus(status)
		if err != nil {
			return nil, fmt.Errorf("lesson status %q: %w", status, err)
		}
		parsedPaid, err := core.ParsePaidStatus(paidStatus)
		if err != nil {
			return nil, fmt.Errorf("lesson paid status %q: %w", paidStatus, err)
		}

		lessons = append(lessons, core.Lesson{
			Date:        date,
			StudentName: student,
			HourlyRate:  rate,
			Hours:       hours,
			Status:      parsedStatus,
			PaidStatus:  parsedPaid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return lessons, nil
}

// Save replaces the stored snapshot with the given one. The delete and the
// inserts share a transaction, so a failed save leaves the previous snapshot
// intact.
func (r *SQLiteRepository) Save(ctx context.Context, lessons []core.Lesson) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lessons`); err != nil {
		return fmt.Errorf("clear lessons: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lessons (position, lesson_date, student_name, hourly_rate, hours, status, paid_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range lessons {
		_, err := stmt.ExecContext(ctx, i, l.Date.Format(), l.StudentName, l.HourlyRate, l.Hours, string(l.Status), string(l.PaidStatus))
		if err != nil {
			return fmt.Errorf("insert lesson %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
