package learning

import (
	"math_quest_backend/internal/model"
	"strings"

	"golang.org/x/text/cases"
)

const (
	speedBonusWindow = 60 // 秒
	speedBonusStep   = 10
)

// NormalizeAnswer 去掉首尾空白并做大小写折叠
func NormalizeAnswer(s string) string {
	// Caser 有内部状态，不能在 goroutine 之间共享
	return cases.Fold().String(strings.TrimSpace(s))
}

// CheckAnswer 忽略首尾空白和大小写比较答案，不做数值等价判断（"1/2" 与 "0.5" 不相等）
func CheckAnswer(problem *model.PracticeProblem, rawAnswer string) bool {
	return NormalizeAnswer(rawAnswer) == NormalizeAnswer(problem.CorrectAnswer)
}

// ScoreAttempt 答对得题目分值，60 秒内答对每快 10 秒加 1 分，总分不超过 100
func ScoreAttempt(problem *model.PracticeProblem, isCorrect bool, timeTakenSeconds int) int {
	if !isCorrect {
		return 0
	}
	if timeTakenSeconds < 0 {
		timeTakenSeconds = 0
	}
	score := problem.Points
	if timeTakenSeconds < speedBonusWindow {
		score += (speedBonusWindow - timeTakenSeconds) / speedBonusStep
		if score > MaxScore {
			score = MaxScore
		}
	}
	return score
}

// QuizResult 测验汇总
type QuizResult struct {
	TotalScore     int     `json:"total_score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalProblems  int     `json:"total_problems"`
	Percentage     float64 `json:"percentage"`
}

// WholePercentage 整数百分比，向下取整
func (r QuizResult) WholePercentage() int {
	if r.TotalProblems == 0 {
		return 0
	}
	return r.CorrectAnswers * 100 / r.TotalProblems
}

// GradedAnswer 测验中单题的判分结果
type GradedAnswer struct {
	Problem   *model.PracticeProblem
	Answer    string
	IsCorrect bool
	TimeTaken int
	Score     int
}

// GradeQuiz 批改测验。总用时按题目数平均分摊到每次作答，未作答的题目不产生作答记录但计入总题数。
func GradeQuiz(problems []model.PracticeProblem, answers map[uint]string, totalTime int) (QuizResult, []GradedAnswer) {
	result := QuizResult{TotalProblems: len(problems)}
	if len(problems) == 0 {
		return result, nil
	}
	if totalTime < 0 {
		totalTime = 0
	}
	perProblem := totalTime / len(problems)

	var graded []GradedAnswer
	for i := range problems {
		problem := &problems[i]
		answer, ok := answers[problem.ID]
		if !ok {
			continue
		}
		correct := CheckAnswer(problem, answer)
		if correct {
			result.CorrectAnswers++
			result.TotalScore += problem.Points
		}
		graded = append(graded, GradedAnswer{
			Problem:   problem,
			Answer:    answer,
			IsCorrect: correct,
			TimeTaken: perProblem,
			Score:     ScoreAttempt(problem, correct, perProblem),
		})
	}
	result.Percentage = float64(result.CorrectAnswers) / float64(len(problems)) * 100
	return result, graded
}
