package learning

import (
	"math_quest_backend/internal/model"
	"testing"
)

func TestCheckAnswer(t *testing.T) {
	tests := []struct {
		correct string
		answer  string
		want    bool
	}{
		{"Rational", " rational ", true},
		{"Rational", "RATIONAL", true},
		{"x > 5", "X > 5", true},
		{"1/2", "0.5", false},
		{"180", "180°", false},
		{"2⁷", "2⁷", true},
		{"Rational", "", false},
	}
	for _, tt := range tests {
		p := &model.PracticeProblem{CorrectAnswer: tt.correct}
		if got := CheckAnswer(p, tt.answer); got != tt.want {
			t.Errorf("CheckAnswer(%q, %q) = %v, want %v", tt.correct, tt.answer, got, tt.want)
		}
	}
}

func TestScoreAttempt(t *testing.T) {
	p := &model.PracticeProblem{Points: 10}
	tests := []struct {
		name      string
		correct   bool
		timeTaken int
		want      int
	}{
		{"fast", true, 30, 13},
		{"instant", true, 0, 16},
		{"just under a minute", true, 59, 10},
		{"slow", true, 90, 10},
		{"exactly a minute", true, 60, 10},
		{"wrong fast", false, 5, 0},
		{"wrong slow", false, 500, 0},
	}
	for _, tt := range tests {
		if got := ScoreAttempt(p, tt.correct, tt.timeTaken); got != tt.want {
			t.Errorf("%s: ScoreAttempt() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestScoreAttempt_CappedAt100(t *testing.T) {
	p := &model.PracticeProblem{Points: 98}
	if got := ScoreAttempt(p, true, 0); got != 100 {
		t.Fatalf("ScoreAttempt() = %d, want 100", got)
	}
}

func TestGradeQuiz(t *testing.T) {
	problems := []model.PracticeProblem{
		{ID: 1, CorrectAnswer: "5", Points: 15},
		{ID: 2, CorrectAnswer: "x > 5", Points: 15},
		{ID: 3, CorrectAnswer: "11", Points: 10},
		{ID: 4, CorrectAnswer: "-3", Points: 10},
	}
	answers := map[uint]string{1: " 5 ", 2: "x < 5", 3: "11"}

	result, graded := GradeQuiz(problems, answers, 100)
	if result.TotalProblems != 4 || result.CorrectAnswers != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.TotalScore != 25 {
		t.Fatalf("total score = %d, want 25", result.TotalScore)
	}
	if result.Percentage != 50 {
		t.Fatalf("percentage = %v, want 50", result.Percentage)
	}
	if len(graded) != 3 {
		t.Fatalf("expected one graded answer per submitted answer, got %d", len(graded))
	}
	for _, g := range graded {
		if g.TimeTaken != 25 {
			t.Fatalf("time per problem = %d, want 25", g.TimeTaken)
		}
	}
	if graded[0].Score != 18 {
		t.Fatalf("first attempt score = %d, want 18", graded[0].Score)
	}
}

func TestGradeQuiz_NoProblems(t *testing.T) {
	result, graded := GradeQuiz(nil, map[uint]string{1: "x"}, 60)
	if result.TotalProblems != 0 || result.Percentage != 0 || graded != nil {
		t.Fatalf("unexpected result %+v %v", result, graded)
	}
}

func TestQuizResultWholePercentage(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{29, 50, 58},
		{1, 3, 33},
		{2, 3, 66},
		{4, 5, 80},
		{0, 0, 0},
		{7, 7, 100},
	}
	for _, tt := range tests {
		r := QuizResult{CorrectAnswers: tt.correct, TotalProblems: tt.total}
		if got := r.WholePercentage(); got != tt.want {
			t.Errorf("%d/%d = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}
