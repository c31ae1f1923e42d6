package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultMaintenanceIntervalMonths = 3

var (
	ErrInvalidInterval = errors.New("maintenance interval must be at least 1 month")
	ErrMissingName     = errors.New("name is required")
)

type Facility struct {
	Base
	ClientID                  uuid.UUID                   `gorm:"type:uuid;index;not null" json:"client_id"`
	Name                      string                      `gorm:"not null" json:"name"`
	InstallationDate          time.Time                   `gorm:"type:date;not null" json:"installation_date"`
	MaintenanceIntervalMonths int                         `gorm:"not null;default:3" json:"maintenance_interval_months"`
	LastMaintenanceDate       *time.Time                  `gorm:"type:date" json:"last_maintenance_date"`
	Details                   *string                     `gorm:"type:text" json:"details"`
	Images                    datatypes.JSONSlice[string] `json:"images"`
	LastNotifiedOn            *time.Time                  `gorm:"type:date" json:"last_notified_on"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (f *Facility) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrMissingName
	}
	if f.MaintenanceIntervalMonths < 1 {
		return ErrInvalidInterval
	}
	return nil
}

func (f *Facility) BeforeSave(tx *gorm.DB) error {
	if f.MaintenanceIntervalMonths == 0 {
		f.MaintenanceIntervalMonths = DefaultMaintenanceIntervalMonths
	}
	return f.Validate()
}

// LastServiceDate is the date maintenance is counted from: the last visit,
// or the installation when there has been none.
func (f *Facility) LastServiceDate() time.Time {
	if f.LastMaintenanceDate != nil {
		return *f.LastMaintenanceDate
	}
	return f.InstallationDate
}
