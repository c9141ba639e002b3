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
	"math_quest_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const guestMessage = "Great job! This is how guest mode works. Create an account to track your progress!"

type PracticeService struct {
	DB          *gorm.DB
	ProblemRepo *repository.ProblemRepository
	AttemptRepo *repository.AttemptRepository
	Concepts    *ConceptService
	Progress    *ProgressService

	now func() time.Time
}

func NewPracticeService(
	db *gorm.DB,
	problemRepo *repository.ProblemRepository,
	attemptRepo *repository.AttemptRepository,
	concepts *ConceptService,
	progress *ProgressService,
) *PracticeService {
	return &PracticeService{
		DB:          db,
		ProblemRepo: problemRepo,
		AttemptRepo: attemptRepo,
		Concepts:    concepts,
		Progress:    progress,
		now:         time.Now,
	}
}

// SubmitResult 单题作答结果
type SubmitResult struct {
	Correct     bool   `json:"correct"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation,omitempty"`
}

// GuestResult 访客作答结果，不计分不保存
type GuestResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
	Message     string `json:"message"`
}

// QuizSubmission 测验提交，Answers 以题目 id 为键
type QuizSubmission struct {
	ConceptID uint
	Answers   map[uint]string
	TotalTime int
}

// AttemptView 作答历史条目
type AttemptView struct {
	model.PracticeAttempt
	Question string `json:"question,omitempty"`
}

func (s *PracticeService) problem(id uint) (*model.PracticeProblem, error) {
	problem, err := s.ProblemRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProblemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load problem %d: %w", id, err)
	}
	return problem, nil
}

func (s *PracticeService) GetProblem(id uint) (*model.ProblemView, error) {
	problem, err := s.problem(id)
	if err != nil {
		return nil, err
	}
	view := problem.View()
	return &view, nil
}

// Submit 批改一道题并追加作答记录，不影响知识点进度
func (s *PracticeService) Submit(ctx context.Context, userID, problemID uint, answer string, timeTaken int) (*SubmitResult, error) {
	problem, err := s.problem(problemID)
	if err != nil {
		return nil, err
	}
	if timeTaken < 0 {
		timeTaken = 0
	}

	correct := learning.CheckAnswer(problem, answer)
	score := learning.ScoreAttempt(problem, correct, timeTaken)
	now := s.now()

	attempt := &model.PracticeAttempt{
		UserID:      userID,
		ProblemID:   problem.ID,
		UserAnswer:  answer,
		IsCorrect:   correct,
		TimeTaken:   timeTaken,
		Score:       score,
		StartedAt:   now.Add(-time.Duration(timeTaken) * time.Second),
		CompletedAt: now,
	}
	if err := s.AttemptRepo.Create(s.DB.WithContext(ctx), attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	monitoring.ObserveAnswer("practice", correct)

	return &SubmitResult{
		Correct:     correct,
		Score:       score,
		Explanation: problem.Explanation,
	}, nil
}

// QuizProblems 测验题目，最多 10 道
func (s *PracticeService) QuizProblems(conceptID uint) (*model.ConceptSummary, []model.ProblemView, error) {
	concept, err := s.Concepts.ByID(conceptID)
	if err != nil {
		return nil, nil, err
	}
	problems, err := s.ProblemRepo.FindByConcept(concept.ID, util.QuizProblemLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("load problems: %w", err)
	}
	if len(problems) == 0 {
		return nil, nil, util.ErrNoProblems
	}
	summary := concept.Summary()
	return &summary, model.ProblemViews(problems), nil
}

// SubmitQuiz 批改测验。对知识点下的全部题目评分，作答记录和进度更新在同一事务内完成，
// 百分比向下取整后作为本次成绩写入进度。
func (s *PracticeService) SubmitQuiz(ctx context.Context, userID uint, sub QuizSubmission) (*learning.QuizResult, error) {
	ctx, span := tracing.StartSpan(ctx, "practice.SubmitQuiz")
	defer span.End()
	span.SetAttributes(
		attribute.Int("quiz.concept_id", int(sub.ConceptID)),
		attribute.Int("quiz.answers", len(sub.Answers)),
	)

	if sub.ConceptID == 0 {
		return nil, util.ErrConceptNotFound
	}
	concept, err := s.Concepts.ByID(sub.ConceptID)
	if err != nil {
		return nil, err
	}
	problems, err := s.ProblemRepo.FindByConcept(concept.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("load problems: %w", err)
	}

	result, graded := learning.GradeQuiz(problems, sub.Answers, sub.TotalTime)
	if len(problems) == 0 {
		return &result, nil
	}

	totalTime := sub.TotalTime
	if totalTime < 0 {
		totalTime = 0
	}
	now := s.now()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range graded {
			attempt := &model.PracticeAttempt{
				UserID:      userID,
				ProblemID:   g.Problem.ID,
				UserAnswer:  g.Answer,
				IsCorrect:   g.IsCorrect,
				TimeTaken:   g.TimeTaken,
				Score:       g.Score,
				StartedAt:   now.Add(-time.Duration(g.TimeTaken) * time.Second),
				CompletedAt: now,
			}
			if err := s.AttemptRepo.Create(tx, attempt); err != nil {
				return fmt.Errorf("save attempt: %w", err)
			}
		}
		_, err := s.Progress.recordScore(tx, userID, concept, result.WholePercentage(), totalTime, now)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quiz submission failed")
		return nil, err
	}

	for _, g := range graded {
		monitoring.ObserveAnswer("quiz", g.IsCorrect)
	}
	monitoring.QuizSubmissions.Inc()
	span.SetAttributes(attribute.Float64("quiz.percentage", result.Percentage))

	logger.Log.Info("Quiz submitted",
		zap.Uint("user_id", userID),
		zap.String("concept", concept.Slug),
		zap.Int("correct", result.CorrectAnswers),
		zap.Int("total", result.TotalProblems))

	return &result, nil
}

// History 最近 50 条作答记录
func (s *PracticeService) History(userID uint) ([]AttemptView, error) {
	attempts, err := s.AttemptRepo.FindRecentByUser(userID, util.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	views := make([]AttemptView, len(attempts))
	for i, a := range attempts {
		views[i] = AttemptView{PracticeAttempt: a}
		if a.Problem != nil {
			views[i].Question = a.Problem.Question
			views[i].Problem = nil
		}
	}
	return views, nil
}

// GuestCheck 访客作答只判断对错
func (s *PracticeService) GuestCheck(problemID uint, answer string) (*GuestResult, error) {
	problem, err := s.problem(problemID)
	if err != nil {
		return nil, err
	}
	correct := learning.CheckAnswer(problem, answer)
	monitoring.ObserveAnswer("guest", correct)
	return &GuestResult{
		Correct:     correct,
		Explanation: problem.Explanation,
		Message:     guestMessage,
	}, nil
}
