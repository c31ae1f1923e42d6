package models

import (
	"strings"
	"time"
)

type Client struct {
	Base
	Name               string     `gorm:"not null" json:"name"`
	Email              *string    `json:"email"`
	Phone              *string    `json:"phone"`
	FirstInteractionAt *time.Time `json:"first_interaction_at"`

	Facilities []Facility `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"facilities,omitempty"`
}

// ContactEmail returns the trimmed address, or "" when the client has none.
func (c Client) ContactEmail() string {
	if c.Email == nil {
		return ""
	}
	return trimmed(*c.Email)
}

func (c Client) ContactPhone() string {
	if c.Phone == nil {
		return ""
	}
	return trimmed(*c.Phone)
}

func trimmed(s string) string { return strings.TrimSpace(s) }
