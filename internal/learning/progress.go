package learning

import (
	"math_quest_backend/internal/model"
	"time"
)

const (
	CompletionThreshold = 80
	MaxScore            = 100
)

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// UpdateProgress 记录一次新的成绩。最高分只增不减，完成状态一旦置位不再回退。
// 返回本次调用是否使记录变为完成。
func UpdateProgress(record *model.ProgressRecord, newScore, timeSpentDelta int, now time.Time) bool {
	newScore = clampScore(newScore)
	if timeSpentDelta < 0 {
		timeSpentDelta = 0
	}

	record.Attempts++
	if newScore > record.BestScore {
		record.BestScore = newScore
	}
	record.TimeSpent += timeSpentDelta
	record.LastAttempt = now

	if newScore >= CompletionThreshold && !record.Completed {
		record.Completed = true
		completedAt := now
		record.CompletedAt = &completedAt
		return true
	}
	return false
}

// NewProgressRecord 首次接触知识点时创建的空记录
func NewProgressRecord(userID, conceptID uint, now time.Time) *model.ProgressRecord {
	return &model.ProgressRecord{
		UserID:       userID,
		ConceptID:    conceptID,
		FirstAttempt: now,
		LastAttempt:  now,
	}
}
