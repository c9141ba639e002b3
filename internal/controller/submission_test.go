package controller

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAnswerString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"Rational"`, "Rational"},
		{`" 1/2 "`, " 1/2 "},
		{`42`, "42"},
		{`0.5`, "0.5"},
		{`true`, "true"},
		{`null`, ""},
		{`["a"]`, ""},
		{`{"x":1}`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := answerString(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("answerString(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIntField(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`30`, 30},
		{`"45"`, 45},
		{`12.9`, 12},
		{`-5`, 0},
		{`"abc"`, 0},
		{`null`, 0},
		{``, 0},
	}
	for _, tt := range tests {
		if got := intField(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("intField(%s) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestQuizAnswers(t *testing.T) {
	got := quizAnswers(json.RawMessage(`{"1": "x", "2": 7, "abc": "y", "0": "z", "3": [1]}`))
	if len(got) != 3 {
		t.Fatalf("answers = %v", got)
	}
	if got[1] != "x" || got[2] != "7" || got[3] != "" {
		t.Errorf("answers = %v", got)
	}
	if len(quizAnswers(json.RawMessage(`"not an object"`))) != 0 {
		t.Error("non-object answers should be empty")
	}
}

func TestSubmissionFieldsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, body := range []string{"", "not json", `["array"]`, `{"answer": "ok"}`} {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
		fields := submissionFields(ctx)
		if body == `{"answer": "ok"}` {
			if answerString(fields["answer"]) != "ok" {
				t.Errorf("answer field lost: %v", fields)
			}
			continue
		}
		if len(fields) != 0 {
			t.Errorf("body %q should yield no fields, got %v", body, fields)
		}
	}
}
