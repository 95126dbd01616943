package models

import "github.com/google/uuid"

type Product struct {
	BaseModel
	CategoryID   uuid.UUID            `gorm:"type:uuid;index;not null" json:"category_id"`
	Category     *Category            `json:"category,omitempty"`
	Price        int64                `gorm:"not null;index" json:"price"`
	IsAvailable  bool                 `gorm:"not null;index" json:"is_available"`
	Image        string               `gorm:"size:512" json:"image"`
	Translations []ProductTranslation `json:"translations"`
}

// ProductTranslation holds the localized name and description of a product.
// (lang_code, name) is unique across all products.
type ProductTranslation struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	LangCode    string    `gorm:"size:8;not null;uniqueIndex:idx_product_translations_lang_name" json:"lang_code"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:idx_product_translations_lang_name" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
}
