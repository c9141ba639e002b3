package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name           string     `gorm:"size:100;not null" json:"name"`
	Email          string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"size:100;not null" json:"-"`
	Role           UserRole   `gorm:"size:20;default:'student'" json:"role"`
	CurrentConcept string     `gorm:"size:100;default:'number_systems'" json:"currentConcept"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}
