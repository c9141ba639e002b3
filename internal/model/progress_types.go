package model

import "time"

// UserStats 由进度记录实时计算的用户汇总数据
type UserStats struct {
	TotalScore        int `json:"totalScore"`
	ConceptsCompleted int `json:"conceptsCompleted"`
}

// Dashboard 学习面板
type Dashboard struct {
	TotalConcepts      int              `json:"totalConcepts"`
	CompletedConcepts  []uint           `json:"completedConcepts"`
	ProgressPercentage float64          `json:"progressPercentage"`
	NextConcept        *ConceptSummary  `json:"nextConcept"`
	ProgressRecords    []ProgressRecord `json:"progressRecords"`
}

// ConceptStatus 带学习状态的知识点
type ConceptStatus struct {
	ConceptSummary
	Available bool `json:"available"`
	Completed bool `json:"completed"`
	BestScore int  `json:"bestScore"`
}

// ProgressOverview 总体进度
type ProgressOverview struct {
	TotalConcepts     int               `json:"totalConcepts"`
	CompletedConcepts int               `json:"completedConcepts"`
	InProgress        int               `json:"inProgress"`
	NotStarted        int               `json:"notStarted"`
	AverageScore      float64           `json:"averageScore"`
	Concepts          []ConceptStatus   `json:"concepts"`
	RecentAttempts    []PracticeAttempt `json:"recentAttempts"`
}

// ConceptProgress 单个知识点的进度详情
type ConceptProgress struct {
	Concept  ConceptSummary    `json:"concept"`
	Progress *ProgressRecord   `json:"progress"`
	Attempts []PracticeAttempt `json:"attempts"`
}

// WeekProgress 周学习进度
type WeekProgress struct {
	Week              string  `json:"week"`
	ConceptsAttempted int     `json:"conceptsAttempted"`
	AverageScore      float64 `json:"averageScore"`
}

// ProgressStats 统计数据
type ProgressStats struct {
	TotalScore     int            `json:"totalScore"`
	TotalTime      int            `json:"totalTime"`
	TotalAttempts  int            `json:"totalAttempts"`
	Accuracy       float64        `json:"accuracy"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalPractice  int            `json:"totalPractice"`
	Weekly         []WeekProgress `json:"weekly"`
}

// ChartPoint 累计得分曲线上的一个点
type ChartPoint struct {
	Date    string `json:"date"`
	Score   int    `json:"score"`
	Concept string `json:"concept"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank              int    `json:"rank"`
	UserID            uint   `json:"userId"`
	User              string `json:"user"`
	TotalScore        int    `json:"totalScore"`
	ConceptsCompleted int    `json:"conceptsCompleted"`
}

// Badge 成就徽章，由进度记录推导，不单独存储
type Badge struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"date"`
}
