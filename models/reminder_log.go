// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	ReminderSent   = "sent"
	ReminderFailed = "failed"
)

type ReminderLog struct {
	Base
	FacilityID   uuid.UUID `gorm:"type:uuid;index;not null" json:"facility_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"`
	Recipient    string    `json:"recipient"`
	Status       string    `gorm:"type:varchar(20)" json:"status"`
	FailureKind  string    `gorm:"type:varchar(40)" json:"failure_kind,omitempty"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}
