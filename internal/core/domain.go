package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StatusPlanned   LessonStatus = "PLANNED"
	StatusCompleted LessonStatus = "COMPLETED"

	PaidStatusPaid   PaidStatus = "PAID"
	PaidStatusUnpaid PaidStatus = "UNPAID"
)

type (
	LessonStatus string

	PaidStatus string

	// Lesson is one tutoring session entry. It is an immutable value:
	// edits replace the whole record, never a single field.
	Lesson struct {
		Date        Date
		StudentName string
		HourlyRate  float64
		Hours       float64
		Status      LessonStatus
		PaidStatus  PaidStatus
	}
)

var (
	ErrEmptyStudentName  = errors.New("empty student name")
	ErrNegativeRate      = errors.New("negative hourly rate")
	ErrNegativeHours     = errors.New("negative hours")
	ErrInvalidStatus     = errors.New("invalid lesson status")
	ErrInvalidPaidStatus = errors.New("invalid paid status")
)

// TotalCost is derived, never stored: the rate*hours invariant holds by
// construction.
func (l Lesson) TotalCost() float64 {
	return l.HourlyRate * l.Hours
}

func (l Lesson) Validate() error {
	if err := l.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(l.StudentName) == "" {
		return ErrEmptyStudentName
	}
	if l.HourlyRate < 0 {
		return ErrNegativeRate
	}
	if l.Hours < 0 {
		return ErrNegativeHours
	}
	if err := l.Status.Validate(); err != nil {
		return err
	}
	return l.PaidStatus.Validate()
}

func (s LessonStatus) Validate() error {
	switch s {
	case StatusPlanned, StatusCompleted:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func (p PaidStatus) Validate() error {
	switch p {
	case PaidStatusPaid, PaidStatusUnpaid:
		return nil
	default:
		return ErrInvalidPaidStatus
	}
}

// ParseLessonStatus parses the wire form used in the persisted document.
func ParseLessonStatus(s string) (LessonStatus, error) {
	status := LessonStatus(strings.ToUpper(strings.TrimSpace(s)))
	if err := status.Validate(); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// ParsePaidStatus parses the wire form used in the persisted document.
func ParsePaidStatus(s string) (PaidStatus, error) {
	status := PaidStatus(strings.ToUpper(strings.TrimSpace(s)))
	if err := status.Validate(); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaidStatus, s)
	}
	return status, nil
}
