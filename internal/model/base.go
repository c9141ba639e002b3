package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AllModels 需要自动迁移的表
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Concept{},
		&PracticeProblem{},
		&PracticeAttempt{},
		&ProgressRecord{},
	}
}
