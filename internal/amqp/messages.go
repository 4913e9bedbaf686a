package amqp

import (
	"encoding/json"
	"time"
)

// LessonPayload carries a full lesson on the wire. The date keeps the same
// dd.mm.yyyy form the ledger file uses.
type LessonPayload struct {
	Date        string  `json:"date"`
	StudentName string  `json:"student_name"`
	HourlyRate  float64 `json:"hourly_rate"`
	Hours       float64 `json:"hours"`
	Status      string  `json:"status"`
	PaidStatus  string  `json:"paid_status"`
}

// LessonEventMessage represents one committed ledger mutation for downstream
// consumers. The mirror worker only acts on "added" events but the full
// action stream is published for anyone listening.
type LessonEventMessage struct {
	Action    string        `json:"action"`
	Index     int           `json:"index"`
	Lesson    LessonPayload `json:"lesson"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewLessonEventMessage creates an event message stamped with the current time
func NewLessonEventMessage(action string, index int, lesson LessonPayload) *LessonEventMessage {
	return &LessonEventMessage{
		Action:    action,
		Index:     index,
		Lesson:    lesson,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LessonEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LessonEventMessageFromJSON creates a message from JSON bytes
func LessonEventMessageFromJSON(data []byte) (*LessonEventMessage, error) {
	var msg LessonEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
