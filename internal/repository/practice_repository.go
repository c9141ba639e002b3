package repository

import (
	"math_quest_backend/internal/model"

	"gorm.io/gorm"
)

type ProblemRepository struct {
	DB *gorm.DB
}

func NewProblemRepository(db *gorm.DB) *ProblemRepository {
	return &ProblemRepository{DB: db}
}

func (r *ProblemRepository) FindByID(id uint) (*model.PracticeProblem, error) {
	var problem model.PracticeProblem
	if err := r.DB.First(&problem, id).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}

// FindByConcept limit <= 0 时返回全部
func (r *ProblemRepository) FindByConcept(conceptID uint, limit int) ([]model.PracticeProblem, error) {
	var problems []model.PracticeProblem
	q := r.DB.Where("concept_id = ?", conceptID).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&problems).Error
	return problems, err
}

func (r *ProblemRepository) CountByConcept(tx *gorm.DB, conceptID uint) (int64, error) {
	if tx == nil {
		tx = r.DB
	}
	var count int64
	err := tx.Model(&model.PracticeProblem{}).Where("concept_id = ?", conceptID).Count(&count).Error
	return count, err
}

func (r *ProblemRepository) CreateBatch(tx *gorm.DB, problems []model.PracticeProblem) error {
	if len(problems) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(&problems).Error
}

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(tx *gorm.DB, attempt *model.PracticeAttempt) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(attempt).Error
}

// FindRecentByUser 最近的作答记录，附带题目
func (r *AttemptRepository) FindRecentByUser(userID uint, limit int) ([]model.PracticeAttempt, error) {
	var attempts []model.PracticeAttempt
	err := r.DB.Preload("Problem").
		Where("user_id = ?", userID).
		Order("completed_at DESC").Order("id DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) FindByUserAndConcept(userID, conceptID uint) ([]model.PracticeAttempt, error) {
	var attempts []model.PracticeAttempt
	err := r.DB.Preload("Problem").
		Joins("JOIN practice_problems ON practice_problems.id = practice_attempts.problem_id").
		Where("practice_problems.concept_id = ? AND practice_attempts.user_id = ?", conceptID, userID).
		Order("practice_attempts.completed_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// AccuracyByUser 返回答对数和总作答数
func (r *AttemptRepository) AccuracyByUser(userID uint) (correct int64, total int64, err error) {
	err = r.DB.Model(&model.PracticeAttempt{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.DB.Model(&model.PracticeAttempt{}).Where("user_id = ? AND is_correct = ?", userID, true).Count(&correct).Error
	return correct, total, err
}
