package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Localized holds the primary (Spanish) text and its optional English variant.
type Localized struct {
	Name          string `gorm:"not null" json:"name"`
	NameEN        string `json:"name_en,omitempty"`
	Description   string `gorm:"type:text" json:"description"`
	DescriptionEN string `gorm:"type:text" json:"description_en,omitempty"`
}

// In returns name and description for locale, falling back to the primary text.
func (l Localized) In(locale string) (string, string) {
	name, description := l.Name, l.Description
	if locale == "en" {
		if l.NameEN != "" {
			name = l.NameEN
		}
		if l.DescriptionEN != "" {
			description = l.DescriptionEN
		}
	}
	return name, description
}

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ProductCategory struct {
	Base
	Localized
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
	Image string `json:"image"`
}

func (ProductCategory) TableName() string { return "products_category" }

type Product struct {
	Base
	Localized
	Slug           string                             `gorm:"uniqueIndex;not null" json:"slug"`
	CategoryID     *uuid.UUID                         `gorm:"column:category;type:uuid;index" json:"category_id"`
	Images         datatypes.JSONSlice[string]        `json:"images"`
	Features       datatypes.JSONSlice[string]        `json:"features"`
	Specifications datatypes.JSONSlice[Specification] `json:"specifications"`

	Category *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

type Work struct {
	Base
	Localized
	Slug     string                      `gorm:"uniqueIndex;not null" json:"slug"`
	Client   string                      `json:"client"`
	Location string                      `json:"location"`
	Year     int                         `json:"year"`
	Images   datatypes.JSONSlice[string] `json:"images"`
	Tags     datatypes.JSONSlice[string] `json:"tags"`
	Results  datatypes.JSONSlice[string] `json:"results"`
}
