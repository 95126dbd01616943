package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is an account able to authenticate against the API.
type User struct {
	BaseModel
	Login        string        `gorm:"size:191;uniqueIndex;not null" json:"login"`
	PasswordHash string        `gorm:"not null" json:"-"`
	Phone        string        `gorm:"size:32" json:"phone"`
	Role         string        `gorm:"size:16;not null;index" json:"role"`
	Tokens       []AccessToken `json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AccessToken backs an issued bearer token. The row ID is the token's jti;
// deleting the row revokes the token.
type AccessToken struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Name       string     `gorm:"size:64" json:"name"`
	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
