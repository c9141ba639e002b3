package service

import (
	"context"
	"errors"
	"fmt"
	"math_quest_backend/internal/curriculum"
	"math_quest_backend/internal/repository"
	"math_quest_backend/pkg/logger"
	"math_quest_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CurriculumService struct {
	DB          *gorm.DB
	ConceptRepo *repository.ConceptRepository
	ProblemRepo *repository.ProblemRepository
	Concepts    *ConceptService
	SeedPath    string
}

func NewCurriculumService(
	db *gorm.DB,
	conceptRepo *repository.ConceptRepository,
	problemRepo *repository.ProblemRepository,
	concepts *ConceptService,
	seedPath string,
) *CurriculumService {
	return &CurriculumService{
		DB:          db,
		ConceptRepo: conceptRepo,
		ProblemRepo: problemRepo,
		Concepts:    concepts,
		SeedPath:    seedPath,
	}
}

// SeedResult 导入结果
type SeedResult struct {
	ConceptsCreated int `json:"conceptsCreated"`
	ConceptsUpdated int `json:"conceptsUpdated"`
	ProblemsCreated int `json:"problemsCreated"`
}

// Reload 重新读取配置中的种子文件并导入
func (s *CurriculumService) Reload(ctx context.Context) (*SeedResult, error) {
	return s.SeedFile(ctx, s.SeedPath)
}

func (s *CurriculumService) SeedFile(ctx context.Context, path string) (*SeedResult, error) {
	doc, err := curriculum.LoadFile(path)
	if err != nil {
		return nil, err
	}
	result, err := s.Seed(ctx, doc)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Curriculum seeded",
		zap.String("file", path),
		zap.Int("concepts_created", result.ConceptsCreated),
		zap.Int("concepts_updated", result.ConceptsUpdated),
		zap.Int("problems_created", result.ProblemsCreated))
	return result, nil
}

// Seed 按 slug 插入或更新知识点；题目只在知识点还没有题目时导入，避免重复和破坏作答记录
func (s *CurriculumService) Seed(ctx context.Context, doc *curriculum.Document) (*SeedResult, error) {
	ctx, span := tracing.StartSpan(ctx, "curriculum.Seed")
	defer span.End()
	span.SetAttributes(attribute.Int("curriculum.concepts", len(doc.Concepts)))

	result := &SeedResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range doc.Concepts {
			incoming, err := entry.Concept()
			if err != nil {
				return fmt.Errorf("convert %s: %w", entry.Slug, err)
			}

			existing, err := s.ConceptRepo.FindBySlugTx(tx, entry.Slug)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := s.ConceptRepo.Create(tx, &incoming); err != nil {
					return fmt.Errorf("create %s: %w", entry.Slug, err)
				}
				existing = &incoming
				result.ConceptsCreated++
			case err != nil:
				return fmt.Errorf("lookup %s: %w", entry.Slug, err)
			default:
				existing.Name = incoming.Name
				existing.Description = incoming.Description
				existing.Difficulty = incoming.Difficulty
				existing.Order = incoming.Order
				existing.Category = incoming.Category
				existing.LessonContent = incoming.LessonContent
				existing.Examples = incoming.Examples
				existing.Prerequisites = incoming.Prerequisites
				if err := s.ConceptRepo.Save(tx, existing); err != nil {
					return fmt.Errorf("update %s: %w", entry.Slug, err)
				}
				result.ConceptsUpdated++
			}

			count, err := s.ProblemRepo.CountByConcept(tx, existing.ID)
			if err != nil {
				return fmt.Errorf("count problems for %s: %w", entry.Slug, err)
			}
			if count > 0 {
				continue
			}
			problems, err := entry.PracticeProblems(existing.ID)
			if err != nil {
				return fmt.Errorf("convert problems for %s: %w", entry.Slug, err)
			}
			if err := s.ProblemRepo.CreateBatch(tx, problems); err != nil {
				return fmt.Errorf("create problems for %s: %w", entry.Slug, err)
			}
			result.ProblemsCreated += len(problems)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "seed failed")
		return nil, err
	}

	if s.Concepts != nil {
		s.Concepts.InvalidateCatalog(ctx)
	}
	return result, nil
}
