package learning

import (
	"math_quest_backend/internal/model"
	"sort"
	"time"
)

type badgeKind int

const (
	conceptCount badgeKind = iota
	totalScore
)

type badgeRule struct {
	name        string
	description string
	icon        string
	kind        badgeKind
	threshold   int
}

var badgeRules = []badgeRule{
	{"First Steps", "Complete your first concept", "target", conceptCount, 1},
	{"Math Explorer", "Complete 5 concepts", "star", conceptCount, 5},
	{"Math Master", "Complete 10 concepts", "crown", conceptCount, 10},
	{"Math Champion", "Complete 15 concepts", "medal", conceptCount, 15},
	{"Century Club", "Earn 100 total points", "hundred", totalScore, 100},
	{"High Achiever", "Earn 500 total points", "trophy", totalScore, 500},
	{"Ultimate Math", "Earn 1000 total points", "gem", totalScore, 1000},
}

// Summary 成就计算所需的汇总数据
type Summary struct {
	CompletionDates []time.Time // 升序
	TotalScore      int
	LastActivity    time.Time
}

// Summarize 从进度记录计算汇总，总分为各知识点最高分之和
func Summarize(records []model.ProgressRecord) Summary {
	var s Summary
	for _, r := range records {
		s.TotalScore += r.BestScore
		if r.LastAttempt.After(s.LastActivity) {
			s.LastActivity = r.LastAttempt
		}
		if r.Completed {
			at := r.LastAttempt
			if r.CompletedAt != nil {
				at = *r.CompletedAt
			}
			s.CompletionDates = append(s.CompletionDates, at)
		}
	}
	sort.Slice(s.CompletionDates, func(i, j int) bool {
		return s.CompletionDates[i].Before(s.CompletionDates[j])
	})
	return s
}

func (s Summary) Stats() model.UserStats {
	return model.UserStats{
		TotalScore:        s.TotalScore,
		ConceptsCompleted: len(s.CompletionDates),
	}
}

// EvaluateAchievements 按固定顺序返回全部徽章及其获得状态。
// 数量类徽章的获得时间是第 N 个完成的知识点的完成时间，分数类徽章取最近一次学习时间。
func EvaluateAchievements(s Summary) []model.Badge {
	badges := make([]model.Badge, 0, len(badgeRules))
	for _, rule := range badgeRules {
		badge := model.Badge{
			Name:        rule.name,
			Description: rule.description,
			Icon:        rule.icon,
		}
		switch rule.kind {
		case conceptCount:
			if len(s.CompletionDates) >= rule.threshold {
				at := s.CompletionDates[rule.threshold-1]
				badge.Earned = true
				badge.EarnedAt = &at
			}
		case totalScore:
			if s.TotalScore >= rule.threshold {
				at := s.LastActivity
				badge.Earned = true
				badge.EarnedAt = &at
			}
		}
		badges = append(badges, badge)
	}
	return badges
}
