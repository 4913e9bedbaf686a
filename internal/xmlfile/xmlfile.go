// Package xmlfile persists the lesson ledger in the legacy XML format:
// a <lessons> root with one <lesson> element per record and dd.mm.yyyy dates.
package xmlfile

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lessons/internal/core"
)

type document struct {
	XMLName xml.Name `xml:"lessons"`
	Lessons []record `xml:"lesson"`
}

// record mirrors one <lesson> element. paidStatus is optional for backward
// compatibility with files written before payment tracking existed.
type record struct {
	Date        string  `xml:"date"`
	StudentName string  `xml:"studentName"`
	HourlyRate  string  `xml:"hourlyRate"`
	Hours       string  `xml:"hours"`
	Status      string  `xml:"status"`
	PaidStatus  *string `xml:"paidStatus"`
}

// Repository reads and writes the ledger file at a fixed path.
type Repository struct {
	path string
}

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

func (r *Repository) Path() string { return r.path }

// Load reads the whole ledger. A missing file is an empty ledger, not an
// error. Any malformed record aborts the load so a damaged file is never
// silently truncated.
func (r *Repository) Load(ctx context.Context) ([]core.Lesson, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}

	lessons := make([]core.Lesson, 0, len(doc.Lessons))
	for i, rec := range doc.Lessons {
		lesson, err := rec.toLesson()
		if err != nil {
			return nil, fmt.Errorf("lesson %d in %s: %w", i+1, r.path, err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// Save writes the full snapshot. The file is written to a temp sibling and
// renamed over the target so a crash mid-write cannot leave a half-written
// ledger behind.
func (r *Repository) Save(ctx context.Context, lessons []core.Lesson) error {
	doc := document{Lessons: make([]record, 0, len(lessons))}
	for _, l := range lessons {
		doc.Lessons = append(doc.Lessons, toRecord(l))
	}

	data, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding lessons: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}
	return nil
}

func (rec record) toLesson() (core.Lesson, error) {
	for field, value := range map[string]string{
		"date":        rec.Date,
		"studentName": rec.StudentName,
		"hourlyRate":  rec.HourlyRate,
		"hours":       rec.Hours,
		"status":      rec.Status,
	} {
		if strings.TrimSpace(value) == "" {
			return core.Lesson{}, fmt.Errorf("missing %s element", field)
		}
	}

	date, err := core.ParseDate(strings.TrimSpace(rec.Date))
	if err != nil {
		return core.Lesson{}, err
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(rec.HourlyRate), 64)
	if err != nil {
		return core.Lesson{}, fmt.Errorf("invalid hourlyRate %q", rec.HourlyRate)
	}
	hours, err := strconv.ParseFloat(strings.TrimSpace(rec.Hours), 64)
	if err != nil {
		return core.Lesson{}, fmt.Errorf("invalid hours %q", rec.Hours)
	}
	status, err := core.ParseLessonStatus(rec.Status)
	if err != nil {
		return core.Lesson{}, err
	}

	// Files from before payment tracking carry no paidStatus element; such
	// lessons load as UNPAID.
	paid := core.PaidStatusUnpaid
	if rec.PaidStatus != nil {
		paid, err = core.ParsePaidStatus(*rec.PaidStatus)
		if err != nil {
			return core.Lesson{}, err
		}
	}

	lesson := core.Lesson{
		Date:        date,
		StudentName: strings.TrimSpace(rec.StudentName),
		HourlyRate:  rate,
		Hours:       hours,
		Status:      status,
		PaidStatus:  paid,
	}
	if err := lesson.Validate(); err != nil {
		return core.Lesson{}, err
	}
	return lesson, nil
}

func toRecord(l core.Lesson) record {
	paid := string(l.PaidStatus)
	return record{
		Date:        l.Date.Format(),
		StudentName: l.StudentName,
		HourlyRate:  strconv.FormatFloat(l.HourlyRate, 'f', -1, 64),
		Hours:       strconv.FormatFloat(l.Hours, 'f', -1, 64),
		Status:      string(l.Status),
		PaidStatus:  &paid,
	}
}
