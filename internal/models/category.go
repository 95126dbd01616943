package models

import "github.com/google/uuid"

// Category groups products; its display name lives in CategoryTranslation rows.
type Category struct {
	BaseModel
	Translations []CategoryTranslation `json:"translations"`
	Products     []Product             `json:"-"`
}

// CategoryTranslation is the name of a category in one locale.
// (lang_code, name) is unique across all categories.
type CategoryTranslation struct {
	BaseModel
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null" json:"category_id"`
	LangCode   string    `gorm:"size:8;not null;uniqueIndex:idx_category_translations_lang_name" json:"lang_code"`
	Name       string    `gorm:"size:255;not null;uniqueIndex:idx_category_translations_lang_name" json:"name"`
}
