package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"lessons/internal/core"
	"lessons/internal/store"
)

// lessonJSON is the wire form of a lesson. total_cost is derived and only
// ever set on responses.
type lessonJSON struct {
	Date        string  `json:"date"`
	StudentName string  `json:"student_name"`
	HourlyRate  float64 `json:"hourly_rate"`
	Hours       float64 `json:"hours"`
	TotalCost   float64 `json:"total_cost,omitempty"`
	Status      string  `json:"status"`
	PaidStatus  string  `json:"paid_status,omitempty"`
}

type lessonWithIndex struct {
	Index int `json:"index"`
	lessonJSON
}

type editRequest struct {
	Index  int        `json:"index"`
	Lesson lessonJSON `json:"lesson"`
}

type deleteRequest struct {
	Index int `json:"index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type summaryRowJSON struct {
	StudentName string  `json:"student_name"`
	LessonHours float64 `json:"lesson_hours"`
	TotalCost   float64 `json:"total_cost"`
	PaidStatus  string  `json:"paid_status"`
}

func fromSummaries(rows []core.StudentSummary) []summaryRowJSON {
	out := make([]summaryRowJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, summaryRowJSON{
			StudentName: r.StudentName,
			LessonHours: r.LessonHours,
			TotalCost:   r.TotalCost,
			PaidStatus:  string(r.PaidStatus),
		})
	}
	return out
}

func (j lessonJSON) toLesson() (core.Lesson, error) {
	date, err := core.ParseDate(strings.TrimSpace(j.Date))
	if err != nil {
		return core.Lesson{}, err
	}
	status, err := core.ParseLessonStatus(j.Status)
	if err != nil {
		return core.Lesson{}, err
	}
	// Payment status is optional on input, matching the ledger file format.
	paid := core.PaidStatusUnpaid
	if strings.TrimSpace(j.PaidStatus) != "" {
		paid, err = core.ParsePaidStatus(j.PaidStatus)
		if err != nil {
			return core.Lesson{}, err
		}
	}

	lesson := core.Lesson{
		Date:        date,
		StudentName: strings.TrimSpace(j.StudentName),
		HourlyRate:  j.HourlyRate,
		Hours:       j.Hours,
		Status:      status,
		PaidStatus:  paid,
	}
	if err := lesson.Validate(); err != nil {
		return core.Lesson{}, err
	}
	return lesson, nil
}

func fromLesson(l core.Lesson) lessonJSON {
	return lessonJSON{
		Date:        l.Date.Format(),
		StudentName: l.StudentName,
		HourlyRate:  l.HourlyRate,
		Hours:       l.Hours,
		TotalCost:   l.TotalCost(),
		Status:      string(l.Status),
		PaidStatus:  string(l.PaidStatus),
	}
}

// statusForError maps domain errors to HTTP statuses: bad input is 422,
// referencing an absent lesson is 404, anything else is a persistence or
// internal failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrEmptyStudentName),
		errors.Is(err, core.ErrNegativeRate),
		errors.Is(err, core.ErrNegativeHours),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidPaidStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrIndexOutOfRange),
		errors.Is(err, store.ErrLessonNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListLessons(w, r)
	case http.MethodPost:
		s.handleCreateLesson(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lessons := s.service.ListLessons(r.Context(), criteria)
	out := make([]lessonWithIndex, 0, len(lessons))
	for _, l := range lessons {
		// The index addresses the lesson in the full ledger, not its row in
		// this filtered view, so edit and delete target the listed lesson.
		out = append(out, lessonWithIndex{Index: l.Index, lessonJSON: fromLesson(l.Lesson)})
	}
	writeJSON(w, http.StatusOK, out)
}

func criteriaFromQuery(r *http.Request) (core.Criteria, error) {
	var criteria core.Criteria
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("date")); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			return core.Criteria{}, err
		}
		criteria.OnDate = &date
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status, err := core.ParseLessonStatus(v)
		if err != nil {
			return core.Criteria{}, err
		}
		criteria.Status = &status
	}
	if v := strings.TrimSpace(q.Get("paid")); v != "" {
		paid, err := core.ParsePaidStatus(v)
		if err != nil {
			return core.Criteria{}, err
		}
		criteria.PaidStatus = &paid
	}
	criteria.StudentName = strings.TrimSpace(q.Get("student"))
	return criteria, nil
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var body lessonJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lesson, err := body.toLesson()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.AddLesson(r.Context(), lesson); err != nil {
		slog.ErrorContext(r.Context(), "Lesson create error", "error", err, "student", lesson.StudentName)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, fromLesson(lesson))
}

func (s *Server) handleEditLesson(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body editRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lesson, err := body.Lesson.toLesson()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.EditLesson(r.Context(), body.Index, lesson); err != nil {
		slog.ErrorContext(r.Context(), "Lesson edit error", "error", err, "index", body.Index)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fromLesson(lesson))
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.DeleteLesson(r.Context(), body.Index); err != nil {
		slog.ErrorContext(r.Context(), "Lesson delete error", "error", err, "index", body.Index)
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Suggest(r.Context()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	month, err := core.ParseMonth(strings.TrimSpace(q.Get("month")))
	if err != nil {
		writeError(w, err)
		return
	}

	filter := core.SummaryFilter{StudentName: strings.TrimSpace(q.Get("student"))}
	if v := strings.TrimSpace(q.Get("paid")); v != "" {
		paid, err := core.ParsePaidStatus(v)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.PaidStatus = &paid
	}

	sortParam := q.Get("sort")
	dirParam := q.Get("dir")
	key := strings.Join([]string{month.Format(), filter.StudentName, q.Get("paid"), sortParam, dirParam}, "|")
	if rows, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, fromSummaries(rows))
		return
	}

	rows := s.service.Summarize(r.Context(), month, filter)
	if sortParam != "" {
		rows = core.SortSummaries(rows, summaryColumn(sortParam), dirParam != "desc")
	}

	s.summaryCache.Set(key, rows)
	writeJSON(w, http.StatusOK, fromSummaries(rows))
}

func summaryColumn(name string) core.SummaryColumn {
	switch name {
	case "hours":
		return core.SortByHours
	case "cost":
		return core.SortByCost
	case "paid":
		return core.SortByPaidStatus
	default:
		return core.SortByStudent
	}
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	month, err := core.ParseMonth(strings.TrimSpace(r.URL.Query().Get("month")))
	if err != nil {
		writeError(w, err)
		return
	}

	key := calendarCacheKey(month, core.Today())
	if days, ok := s.calendarCache.Get(key); ok {
		writeJSON(w, http.StatusOK, days)
		return
	}

	days := s.service.ClassifyMonth(r.Context(), month)
	s.calendarCache.Set(key, days)
	writeJSON(w, http.StatusOK, days)
}

// calendarCacheKey includes the current date because the classification
// embeds the TODAY marker: a cached month must not survive midnight.
func calendarCacheKey(month core.Month, today core.Date) string {
	return month.Format() + "|" + today.Format()
}
