package service

import (
	"context"
	"errors"
	"fmt"
	"math_quest_backend/internal/learning"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/repository"
	"math_quest_backend/internal/util"
	"math_quest_backend/pkg/logger"
	"math_quest_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	DB           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	AttemptRepo  *repository.AttemptRepository
	UserRepo     *repository.UserRepository
	Concepts     *ConceptService

	now func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	progressRepo *repository.ProgressRepository,
	attemptRepo *repository.AttemptRepository,
	userRepo *repository.UserRepository,
	concepts *ConceptService,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		ProgressRepo: progressRepo,
		AttemptRepo:  attemptRepo,
		UserRepo:     userRepo,
		Concepts:     concepts,
		now:          time.Now,
	}
}

// ProgressUpdate 更新后的进度
type ProgressUpdate struct {
	NewScore  int  `json:"new_score"`
	Completed bool `json:"completed"`
}

// recordScore 在事务内对 (user, concept) 的进度记录应用一次成绩
func (s *ProgressService) recordScore(tx *gorm.DB, userID uint, concept *model.Concept, score, timeSpent int, now time.Time) (*model.ProgressRecord, error) {
	record, err := s.ProgressRepo.GetOrCreate(tx, userID, concept.ID, now)
	if err != nil {
		return nil, fmt.Errorf("get progress record: %w", err)
	}

	justCompleted := learning.UpdateProgress(record, score, timeSpent, now)
	if err := s.ProgressRepo.Save(tx, record); err != nil {
		return nil, fmt.Errorf("save progress record: %w", err)
	}
	if err := s.UserRepo.UpdateCurrentConcept(tx, userID, concept.Slug); err != nil {
		return nil, fmt.Errorf("update current concept: %w", err)
	}

	if justCompleted {
		monitoring.ConceptsCompleted.Inc()
		logger.Log.Info("Concept completed",
			zap.Uint("user_id", userID),
			zap.String("concept", concept.Slug),
			zap.Int("score", record.BestScore))
	}
	return record, nil
}

// UpdateConceptProgress 记录一次学习成绩，分数会被截断到 [0,100]
func (s *ProgressService) UpdateConceptProgress(ctx context.Context, userID uint, slug string, score, timeSpent int) (*ProgressUpdate, error) {
	concept, err := s.Concepts.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var record *model.ProgressRecord
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.recordScore(tx, userID, concept, score, timeSpent, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ProgressUpdate{NewScore: record.BestScore, Completed: record.Completed}, nil
}

// CompleteConcept 直接标记完成，等价于一次满分且不计时的成绩
func (s *ProgressService) CompleteConcept(ctx context.Context, userID uint, slug string) (*ProgressUpdate, error) {
	return s.UpdateConceptProgress(ctx, userID, slug, learning.MaxScore, 0)
}

func (s *ProgressService) UserStats(userID uint) (model.UserStats, error) {
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("load progress: %w", err)
	}
	return learning.Summarize(records).Stats(), nil
}

func (s *ProgressService) Dashboard(ctx context.Context, userID uint) (*model.Dashboard, error) {
	catalog, err := s.Concepts.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	completed := catalog.CompletedFromRecords(records)

	dashboard := &model.Dashboard{
		TotalConcepts:     catalog.Len(),
		CompletedConcepts: []uint{},
		ProgressRecords:   records,
	}
	for _, r := range records {
		if r.Completed {
			dashboard.CompletedConcepts = append(dashboard.CompletedConcepts, r.ConceptID)
		}
	}
	if catalog.Len() > 0 {
		dashboard.ProgressPercentage = float64(completed.Len()) / float64(catalog.Len()) * 100
	}
	if next := catalog.NextAvailable(completed); next != nil {
		summary := next.Summary()
		dashboard.NextConcept = &summary
	}
	return dashboard, nil
}

func (s *ProgressService) Overview(ctx context.Context, userID uint) (*model.ProgressOverview, error) {
	catalog, err := s.Concepts.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	recent, err := s.AttemptRepo.FindRecentByUser(userID, util.RecentAttemptsLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent attempts: %w", err)
	}

	completed := catalog.CompletedFromRecords(records)
	overview := &model.ProgressOverview{
		TotalConcepts:  catalog.Len(),
		Concepts:       conceptStatuses(catalog, records, completed),
		RecentAttempts: recent,
	}

	total := 0
	for _, r := range records {
		total += r.BestScore
		switch {
		case r.Completed:
			overview.CompletedConcepts++
		case r.Attempts > 0:
			overview.InProgress++
		}
	}
	overview.NotStarted = overview.TotalConcepts - overview.CompletedConcepts - overview.InProgress
	if overview.NotStarted < 0 {
		overview.NotStarted = 0
	}
	if len(records) > 0 {
		overview.AverageScore = float64(total) / float64(len(records))
	}
	return overview, nil
}

func (s *ProgressService) ConceptProgress(userID, conceptID uint) (*model.ConceptProgress, error) {
	concept, err := s.Concepts.ByID(conceptID)
	if err != nil {
		return nil, err
	}

	result := &model.ConceptProgress{Concept: concept.Summary()}

	record, err := s.ProgressRepo.FindOne(userID, conceptID)
	switch {
	case err == nil:
		result.Progress = record
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load progress: %w", err)
	}

	attempts, err := s.AttemptRepo.FindByUserAndConcept(userID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	result.Attempts = attempts
	return result, nil
}

func (s *ProgressService) Stats(userID uint) (*model.ProgressStats, error) {
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	correct, total, err := s.AttemptRepo.AccuracyByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load accuracy: %w", err)
	}
	now := s.now()
	recent, err := s.ProgressRepo.FindSince(userID, learning.StatsWindowStart(now))
	if err != nil {
		return nil, fmt.Errorf("load recent progress: %w", err)
	}

	stats := &model.ProgressStats{
		CorrectAnswers: int(correct),
		TotalPractice:  int(total),
		Weekly:         learning.WeeklyProgress(recent, now),
	}
	for _, r := range records {
		stats.TotalScore += r.BestScore
		stats.TotalTime += r.TimeSpent
		stats.TotalAttempts += r.Attempts
	}
	if total > 0 {
		stats.Accuracy = float64(correct) / float64(total) * 100
	}
	return stats, nil
}

func (s *ProgressService) Achievements(userID uint) ([]model.Badge, error) {
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return learning.EvaluateAchievements(learning.Summarize(records)), nil
}

func (s *ProgressService) ChartData(userID uint) ([]model.ChartPoint, error) {
	records, err := s.ProgressRepo.FindByUserWithConcept(userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	names := make(map[uint]string, len(records))
	for _, r := range records {
		if r.Concept != nil {
			names[r.ConceptID] = r.Concept.Name
		}
	}
	return learning.CumulativeScores(records, func(id uint) string { return names[id] }), nil
}

func (s *ProgressService) Leaderboard(limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = util.LeaderboardLimit
	}
	rows, err := s.ProgressRepo.TopByScore(limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.UserID
	}
	users, err := s.UserRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	entries := make([]model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = model.LeaderboardEntry{
			Rank:              i + 1,
			UserID:            row.UserID,
			User:              names[row.UserID],
			TotalScore:        row.TotalScore,
			ConceptsCompleted: row.ConceptsCompleted,
		}
	}
	return entries, nil
}
