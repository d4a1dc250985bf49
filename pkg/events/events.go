// Package events defines the chat record lifecycle messages sent to Kafka.
package events

import (
	"time"

	"github.com/google/uuid"

	"mindcare-go/internal/model"
)

// RecordEventType names a change to the history store.
type RecordEventType string

const (
	RecordCreated RecordEventType = "record.created"
	RecordDeleted RecordEventType = "record.deleted"
)

// RecordEvent describes one history store change for downstream trend reporting.
// Message text is not carried, only the classification outcome.
type RecordEvent struct {
	EventID      string          `json:"event_id"`
	Type         RecordEventType `json:"type"`
	RecordID     string          `json:"record_id"`
	UserID       string          `json:"user_id"`
	AnxietyLevel string          `json:"anxiety_level,omitempty"`
	Topics       []string        `json:"topics,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewRecordCreated builds the event emitted after a record is stored.
func NewRecordCreated(record *model.ChatRecord, topics []string) RecordEvent {
	return RecordEvent{
		EventID:      uuid.New().String(),
		Type:         RecordCreated,
		RecordID:     record.RecordID(),
		UserID:       record.UserID,
		AnxietyLevel: record.AnxietyLevel,
		Topics:       topics,
		Timestamp:    record.Timestamp,
		OccurredAt:   time.Now().UTC(),
	}
}

// NewRecordDeleted builds the event emitted after a record is removed.
func NewRecordDeleted(record *model.ChatRecord) RecordEvent {
	return RecordEvent{
		EventID:      uuid.New().String(),
		Type:         RecordDeleted,
		RecordID:     record.RecordID(),
		UserID:       record.UserID,
		AnxietyLevel: record.AnxietyLevel,
		Timestamp:    record.Timestamp,
		OccurredAt:   time.Now().UTC(),
	}
}
