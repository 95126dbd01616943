package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is the storefront profile attached to a user account.
type Client struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User      *User      `json:"user,omitempty"`
	FirstName string     `gorm:"size:100" json:"first_name"`
	LastName  string     `gorm:"size:100" json:"last_name"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date"`
	Gender    string     `gorm:"size:16" json:"gender"`
}
