package models

import "time"

// WebhookEvent is the append-only audit trail of PSP notifications. Every
// delivery is recorded here before any state transition is attempted.
type WebhookEvent struct {
	ID        uint   `gorm:"primarykey"`
	PspName   string `gorm:"size:16;not null"`
	EventType string `gorm:"size:32;not null"`
	Payload   string `gorm:"type:text"`
	CreatedAt time.Time
}
