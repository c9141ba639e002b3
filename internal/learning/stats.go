package learning

import (
	"fmt"
	"math_quest_backend/internal/model"
	"time"
)

const (
	statsWeeks = 4
	week       = 7 * 24 * time.Hour
)

// StatsWindowStart 周统计覆盖的最早时间
func StatsWindowStart(now time.Time) time.Time {
	return now.Add(-time.Duration(statsWeeks) * week)
}

// WeeklyProgress 最近四周的学习情况，按 LastAttempt 落入 [now-(i+1)周, now-i周) 分桶。
// 返回顺序由近到远，标签 "Week 4" 表示最近一周。
func WeeklyProgress(records []model.ProgressRecord, now time.Time) []model.WeekProgress {
	weeks := make([]model.WeekProgress, 0, statsWeeks)
	for i := 0; i < statsWeeks; i++ {
		start := now.Add(-time.Duration(i+1) * week)
		end := now.Add(-time.Duration(i) * week)

		count, sum := 0, 0
		for _, r := range records {
			if !r.LastAttempt.Before(start) && r.LastAttempt.Before(end) {
				count++
				sum += r.BestScore
			}
		}

		wp := model.WeekProgress{
			Week:              fmt.Sprintf("Week %d", statsWeeks-i),
			ConceptsAttempted: count,
		}
		if count > 0 {
			wp.AverageScore = float64(sum) / float64(count)
		}
		weeks = append(weeks, wp)
	}
	return weeks
}

// CumulativeScores 累计得分曲线，records 需已按 LastAttempt 升序排列
func CumulativeScores(records []model.ProgressRecord, conceptName func(id uint) string) []model.ChartPoint {
	points := make([]model.ChartPoint, 0, len(records))
	total := 0
	for _, r := range records {
		total += r.BestScore
		points = append(points, model.ChartPoint{
			Date:    r.LastAttempt.Format("2006-01-02"),
			Score:   total,
			Concept: conceptName(r.ConceptID),
		})
	}
	return points
}
