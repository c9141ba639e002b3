package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ProblemType string

const (
	MultipleChoice ProblemType = "multiple_choice"
	FillBlank      ProblemType = "fill_blank"
)

// PracticeProblem 知识点下的练习题
type PracticeProblem struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ConceptID     uint           `gorm:"index;not null" json:"conceptId"`
	Question      string         `gorm:"type:text;not null" json:"question"`
	ProblemType   ProblemType    `gorm:"size:50;not null" json:"problemType"`
	Difficulty    int            `gorm:"default:1" json:"difficulty"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"-"`
	Options       datatypes.JSON `json:"-"`
	Explanation   string         `gorm:"type:text" json:"-"`
	Points        int            `gorm:"default:10" json:"points"`
	TimeLimit     int            `gorm:"default:120" json:"timeLimit"` // 秒
	CreatedAt     time.Time      `json:"createdAt"`
}

func (PracticeProblem) TableName() string {
	return "practice_problems"
}

func (p *PracticeProblem) OptionList() []string {
	if len(p.Options) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(p.Options, &out); err != nil {
		return nil
	}
	return out
}

// ProblemView 返回给客户端的题目，不包含答案和解析
type ProblemView struct {
	ID          uint        `json:"id"`
	ConceptID   uint        `json:"conceptId"`
	Question    string      `json:"question"`
	ProblemType ProblemType `json:"problemType"`
	Difficulty  int         `json:"difficulty"`
	Options     []string    `json:"options,omitempty"`
	Points      int         `json:"points"`
	TimeLimit   int         `json:"timeLimit"`
}

func (p *PracticeProblem) View() ProblemView {
	return ProblemView{
		ID:          p.ID,
		ConceptID:   p.ConceptID,
		Question:    p.Question,
		ProblemType: p.ProblemType,
		Difficulty:  p.Difficulty,
		Options:     p.OptionList(),
		Points:      p.Points,
		TimeLimit:   p.TimeLimit,
	}
}

func ProblemViews(problems []PracticeProblem) []ProblemView {
	views := make([]ProblemView, len(problems))
	for i := range problems {
		views[i] = problems[i].View()
	}
	return views
}

// PracticeAttempt 一次作答记录，只追加不修改
type PracticeAttempt struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	ProblemID   uint      `gorm:"index;not null" json:"problemId"`
	UserAnswer  string    `gorm:"type:text;not null" json:"userAnswer"`
	IsCorrect   bool      `gorm:"not null" json:"isCorrect"`
	TimeTaken   int       `gorm:"default:0" json:"timeTaken"` // 秒
	Score       int       `gorm:"default:0" json:"score"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `gorm:"index" json:"completedAt"`

	Problem *PracticeProblem `gorm:"foreignKey:ProblemID" json:"problem,omitempty"`
}

func (PracticeAttempt) TableName() string {
	return "practice_attempts"
}
