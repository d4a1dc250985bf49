// Package model defines the persisted and returned data shapes.
package model

import (
	"strconv"
	"time"
)

// DefaultUserID is used when a caller does not supply a user identifier.
const DefaultUserID = "guest"

// MaxSuggestions bounds ChatRecord.Suggestions and Analysis.Suggestions.
const MaxSuggestions = 4

// ChatRecord is one persisted interaction. Records are never updated after creation.
type ChatRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id,string"`
	UserID       string    `gorm:"type:varchar(255);index;not null" json:"user_id"`
	Message      string    `gorm:"type:longtext;not null" json:"message"`
	Response     string    `gorm:"type:text;not null" json:"response"`
	AnxietyLevel string    `gorm:"type:varchar(64);not null" json:"anxiety_level"`
	Suggestions  []string  `gorm:"type:text;serializer:json" json:"suggestions"`
	Timestamp    time.Time `gorm:"index;not null" json:"timestamp"`
}

// TableName maps ChatRecord to the chats table.
func (ChatRecord) TableName() string {
	return "chats"
}

// RecordID returns the store identifier in the opaque string form callers see.
func (r *ChatRecord) RecordID() string {
	return FormatRecordID(r.ID)
}

// FormatRecordID renders a store identifier as a string.
func FormatRecordID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseRecordID converts a caller-supplied identifier into the store key space.
// ok is false when the string is not a positive decimal integer.
func ParseRecordID(s string) (id uint, ok bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
