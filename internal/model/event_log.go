package model

import "time"

// EventType is the severity column of the event log.
type EventType string

const (
	EventTypeError       EventType = "E"
	EventTypeWarning     EventType = "W"
	EventTypeInformation EventType = "I"
)

// EventLogEntry is one row of the platform event log.
type EventLogEntry struct {
	ID          int       `gorm:"primaryKey;autoIncrement"`
	Type        EventType `gorm:"not null"`
	Source      string    `gorm:"not null"`
	Code        string    `gorm:"not null"`
	Description string
	Time        time.Time `gorm:"index;not null"`
}

func (EventLogEntry) TableName() string {
	return "event_log"
}
