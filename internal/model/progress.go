package model

import (
	"time"
)

// ProgressRecord 用户在某个知识点上的学习进度，(user_id, concept_id) 唯一
type ProgressRecord struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint       `gorm:"uniqueIndex:idx_progress_user_concept;not null" json:"userId"`
	ConceptID    uint       `gorm:"uniqueIndex:idx_progress_user_concept;not null" json:"conceptId"`
	BestScore    int        `gorm:"column:score;default:0" json:"score"` // 0-100
	Attempts     int        `gorm:"default:0" json:"attempts"`
	TimeSpent    int        `gorm:"default:0" json:"timeSpent"` // 秒
	Completed    bool       `gorm:"default:false" json:"completed"`
	FirstAttempt time.Time  `json:"firstAttempt"`
	LastAttempt  time.Time  `gorm:"index" json:"lastAttempt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Concept *Concept `gorm:"foreignKey:ConceptID" json:"concept,omitempty"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}
