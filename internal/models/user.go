package models

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    string    `gorm:"uniqueIndex;not null" json:"user_id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `gorm:"not null;default:'user'" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	IsBlocked bool      `gorm:"not null;default:false" json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
