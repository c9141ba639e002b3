package service

import (
	"context"
	"errors"
	"fmt"
	"math_quest_backend/internal/learning"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/repository"
	"math_quest_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type ConceptService struct {
	ConceptRepo  *repository.ConceptRepository
	ProblemRepo  *repository.ProblemRepository
	ProgressRepo *repository.ProgressRepository
	Cache        CatalogCache
}

func NewConceptService(
	conceptRepo *repository.ConceptRepository,
	problemRepo *repository.ProblemRepository,
	progressRepo *repository.ProgressRepository,
	cache CatalogCache,
) *ConceptService {
	if cache == nil {
		cache = nopCatalogCache{}
	}
	return &ConceptService{
		ConceptRepo:  conceptRepo,
		ProblemRepo:  problemRepo,
		ProgressRepo: progressRepo,
		Cache:        cache,
	}
}

// PrerequisiteError 知识点尚未解锁
type PrerequisiteError struct {
	Concept string
	Missing []string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s requires %s", util.ErrPrerequisitesUnmet, e.Concept, strings.Join(e.Missing, ", "))
}

func (e *PrerequisiteError) Unwrap() error {
	return util.ErrPrerequisitesUnmet
}

// ConceptDetail 知识点课程内容
type ConceptDetail struct {
	model.ConceptSummary
	LessonContent   string                 `json:"lessonContent"`
	Examples        []model.ConceptExample `json:"examples"`
	IllustrationURL string                 `json:"illustrationUrl,omitempty"`
	Problems        []model.ProblemView    `json:"problems"`
	Progress        *model.ProgressRecord  `json:"progress,omitempty"`
}

func newConceptDetail(concept *model.Concept, problems []model.PracticeProblem) *ConceptDetail {
	examples := concept.ExampleList()
	if examples == nil {
		examples = []model.ConceptExample{}
	}
	return &ConceptDetail{
		ConceptSummary:  concept.Summary(),
		LessonContent:   concept.LessonContent,
		Examples:        examples,
		IllustrationURL: concept.IllustrationURL,
		Problems:        model.ProblemViews(problems),
	}
}

// Catalog 加载课程目录，优先读缓存
func (s *ConceptService) Catalog(ctx context.Context) (*learning.Catalog, error) {
	if concepts, ok := s.Cache.Get(ctx); ok {
		return learning.NewCatalog(concepts), nil
	}

	concepts, err := s.ConceptRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("load concepts: %w", err)
	}
	s.Cache.Set(ctx, concepts)
	return learning.NewCatalog(concepts), nil
}

func (s *ConceptService) InvalidateCatalog(ctx context.Context) {
	s.Cache.Invalidate(ctx)
}

// Curriculum 按课程顺序列出全部知识点
func (s *ConceptService) Curriculum(ctx context.Context) ([]model.ConceptSummary, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	concepts := catalog.Concepts()
	summaries := make([]model.ConceptSummary, len(concepts))
	for i := range concepts {
		summaries[i] = concepts[i].Summary()
	}
	return summaries, nil
}

func (s *ConceptService) completedSet(catalog *learning.Catalog, userID uint) ([]model.ProgressRecord, learning.CompletedSet, error) {
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load progress: %w", err)
	}
	return records, catalog.CompletedFromRecords(records), nil
}

// ListForUser 知识点列表，附带是否可学习和是否已完成
func (s *ConceptService) ListForUser(ctx context.Context, userID uint) ([]model.ConceptStatus, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	records, completed, err := s.completedSet(catalog, userID)
	if err != nil {
		return nil, err
	}
	return conceptStatuses(catalog, records, completed), nil
}

func conceptStatuses(catalog *learning.Catalog, records []model.ProgressRecord, completed learning.CompletedSet) []model.ConceptStatus {
	bestScores := make(map[uint]int, len(records))
	for _, r := range records {
		bestScores[r.ConceptID] = r.BestScore
	}

	concepts := catalog.Concepts()
	statuses := make([]model.ConceptStatus, len(concepts))
	for i := range concepts {
		concept := &concepts[i]
		statuses[i] = model.ConceptStatus{
			ConceptSummary: concept.Summary(),
			Available:      learning.IsAvailable(concept, completed),
			Completed:      completed.Has(concept.Slug),
			BestScore:      bestScores[concept.ID],
		}
	}
	return statuses
}

// GetForUser 返回知识点课程内容，前置知识点未完成时返回 *PrerequisiteError
func (s *ConceptService) GetForUser(ctx context.Context, userID uint, slug string) (*ConceptDetail, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	concept, ok := catalog.BySlug(slug)
	if !ok {
		return nil, util.ErrConceptNotFound
	}

	records, completed, err := s.completedSet(catalog, userID)
	if err != nil {
		return nil, err
	}
	if !learning.IsAvailable(concept, completed) {
		return nil, &PrerequisiteError{
			Concept: concept.Slug,
			Missing: learning.MissingPrerequisites(concept, completed),
		}
	}

	problems, err := s.ProblemRepo.FindByConcept(concept.ID, util.LessonProblems)
	if err != nil {
		return nil, fmt.Errorf("load problems: %w", err)
	}

	detail := newConceptDetail(concept, problems)
	for i := range records {
		if records[i].ConceptID == concept.ID {
			detail.Progress = &records[i]
			break
		}
	}
	return detail, nil
}

// Problems 知识点下全部练习题
func (s *ConceptService) Problems(ctx context.Context, slug string) ([]model.ProblemView, error) {
	concept, err := s.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	problems, err := s.ProblemRepo.FindByConcept(concept.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("load problems: %w", err)
	}
	if len(problems) == 0 {
		return nil, util.ErrNoProblems
	}
	return model.ProblemViews(problems), nil
}

func (s *ConceptService) BySlug(ctx context.Context, slug string) (*model.Concept, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	concept, ok := catalog.BySlug(slug)
	if !ok {
		return nil, util.ErrConceptNotFound
	}
	return concept, nil
}

func (s *ConceptService) ByID(id uint) (*model.Concept, error) {
	concept, err := s.ConceptRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrConceptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load concept %d: %w", id, err)
	}
	return concept, nil
}

// GuestDetail 访客查看课程，不做前置校验，最多附带 3 道题
func (s *ConceptService) GuestDetail(ctx context.Context, slug string) (*ConceptDetail, error) {
	concept, err := s.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	problems, err := s.ProblemRepo.FindByConcept(concept.ID, util.GuestLessonProblems)
	if err != nil {
		return nil, fmt.Errorf("load problems: %w", err)
	}
	return newConceptDetail(concept, problems), nil
}

// GuestPractice 访客练习题，最多 5 道
func (s *ConceptService) GuestPractice(conceptID uint) (*model.ConceptSummary, []model.ProblemView, error) {
	concept, err := s.ByID(conceptID)
	if err != nil {
		return nil, nil, err
	}
	problems, err := s.ProblemRepo.FindByConcept(concept.ID, util.GuestPracticeProblems)
	if err != nil {
		return nil, nil, fmt.Errorf("load problems: %w", err)
	}
	summary := concept.Summary()
	return &summary, model.ProblemViews(problems), nil
}

// SetIllustration 替换插图，返回被替换的旧对象键（没有则为空）
func (s *ConceptService) SetIllustration(ctx context.Context, conceptID uint, url, key string) (string, error) {
	// 缓存中不保存对象键，直接读库
	concept, err := s.ByID(conceptID)
	if err != nil {
		return "", err
	}
	if err := s.ConceptRepo.UpdateIllustration(conceptID, url, key); err != nil {
		return "", fmt.Errorf("update illustration: %w", err)
	}
	s.InvalidateCatalog(ctx)
	if concept.IllustrationKey == key {
		return "", nil
	}
	return concept.IllustrationKey, nil
}
