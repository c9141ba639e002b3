package repository

import (
	"math_quest_backend/internal/model"

	"gorm.io/gorm"
)

type ConceptRepository struct {
	DB *gorm.DB
}

func NewConceptRepository(db *gorm.DB) *ConceptRepository {
	return &ConceptRepository{DB: db}
}

// FindAll 按课程顺序返回全部知识点
func (r *ConceptRepository) FindAll() ([]model.Concept, error) {
	var concepts []model.Concept
	err := r.DB.Order("order_in_curriculum ASC").Order("id ASC").Find(&concepts).Error
	return concepts, err
}

func (r *ConceptRepository) FindByID(id uint) (*model.Concept, error) {
	var concept model.Concept
	if err := r.DB.First(&concept, id).Error; err != nil {
		return nil, err
	}
	return &concept, nil
}

// FindBySlugTx 可在事务内使用，tx 为空时使用默认连接
func (r *ConceptRepository) FindBySlugTx(tx *gorm.DB, slug string) (*model.Concept, error) {
	var concept model.Concept
	if err := r.db(tx).Where("slug = ?", slug).First(&concept).Error; err != nil {
		return nil, err
	}
	return &concept, nil
}

func (r *ConceptRepository) Create(tx *gorm.DB, concept *model.Concept) error {
	return r.db(tx).Create(concept).Error
}

func (r *ConceptRepository) Save(tx *gorm.DB, concept *model.Concept) error {
	return r.db(tx).Save(concept).Error
}

func (r *ConceptRepository) UpdateIllustration(id uint, url, key string) error {
	return r.DB.Model(&model.Concept{}).Where("id = ?", id).Updates(map[string]interface{}{
		"illustration_url": url,
		"illustration_key": key,
	}).Error
}

func (r *ConceptRepository) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}
