package repository

import (
	"math_quest_backend/internal/learning"
	"math_quest_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUser(userID uint) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.Where("user_id = ?", userID).Order("concept_id ASC").Find(&records).Error
	return records, err
}

// FindByUserWithConcept 按最近学习时间排序，附带知识点
func (r *ProgressRepository) FindByUserWithConcept(userID uint) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.Preload("Concept").
		Where("user_id = ?", userID).
		Order("last_attempt ASC").
		Find(&records).Error
	return records, err
}

func (r *ProgressRepository) FindOne(userID, conceptID uint) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := r.DB.Where("user_id = ? AND concept_id = ?", userID, conceptID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindSince 最近一次学习时间不早于 since 的记录
func (r *ProgressRepository) FindSince(userID uint, since time.Time) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.Where("user_id = ? AND last_attempt >= ?", userID, since).Find(&records).Error
	return records, err
}

// GetOrCreate 在事务内取得 (user, concept) 的进度记录。
// 并发首次创建由唯一索引裁决：冲突时什么也不做，然后重新读取胜出的那一行。
func (r *ProgressRepository) GetOrCreate(tx *gorm.DB, userID, conceptID uint, now time.Time) (*model.ProgressRecord, error) {
	if tx == nil {
		tx = r.DB
	}
	fresh := learning.NewProgressRecord(userID, conceptID, now)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "concept_id"}},
		DoNothing: true,
	}).Create(fresh).Error
	if err != nil {
		return nil, err
	}

	var record model.ProgressRecord
	err = tx.Where("user_id = ? AND concept_id = ?", userID, conceptID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ProgressRepository) Save(tx *gorm.DB, record *model.ProgressRecord) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(record).Error
}

// UserScore 用户汇总得分
type UserScore struct {
	UserID            uint
	TotalScore        int
	ConceptsCompleted int
}

// TopByScore 排行榜，总分由进度记录实时汇总
func (r *ProgressRepository) TopByScore(limit int) ([]UserScore, error) {
	var rows []UserScore
	err := r.DB.Model(&model.ProgressRecord{}).
		Select("user_id, SUM(score) AS total_score, SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS concepts_completed").
		Group("user_id").
		Order("total_score DESC").
		Order("user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
