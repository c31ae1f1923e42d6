package models

import (
	"gorm.io/datatypes"
)

type Service struct {
	Base
	Localized
	Slug     string                      `gorm:"uniqueIndex;not null" json:"slug"`
	Image    string                      `json:"image"`
	Features datatypes.JSONSlice[string] `json:"features"`
}
