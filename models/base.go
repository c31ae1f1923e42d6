package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the uuid key and creation timestamp shared by every table.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Client{},
		&Facility{},
		&ProductCategory{},
		&Product{},
		&Service{},
		&Work{},
		&Profile{},
		&ReminderLog{},
	}
}
