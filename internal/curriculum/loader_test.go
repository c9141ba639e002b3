package curriculum

import (
	"errors"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/util"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
version: 1
concepts:
  - slug: number_systems
    name: Number Systems
    description: Rational and irrational numbers
    category: Number Sense
    difficulty: 2
    lesson_content: "# Number Systems"
    examples:
      - question: Is 0.333... rational?
        answer: "Yes"
    problems:
      - question: Which number is irrational?
        options: ["1/2", "0.75", "√2", "4"]
        correct_answer: "√2"
        explanation: √2 cannot be written as a fraction.
      - question: "What is 1/4 as a decimal?"
        correct_answer: "0.25"
        points: 15
  - slug: exponents_powers
    name: Exponents
    description: Laws of exponents
    category: Algebra
    prerequisites: [number_systems]
`

func TestParseValidDocument(t *testing.T) {
	doc, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Concepts) != 2 {
		t.Fatalf("concepts = %d, want 2", len(doc.Concepts))
	}

	ns := doc.Concepts[0]
	if ns.Order != 1 || doc.Concepts[1].Order != 2 {
		t.Errorf("orders = %d, %d; want 1, 2", ns.Order, doc.Concepts[1].Order)
	}
	if ns.Problems[0].Type != string(model.MultipleChoice) {
		t.Errorf("problem with options should default to multiple_choice, got %q", ns.Problems[0].Type)
	}
	if ns.Problems[1].Type != string(model.FillBlank) {
		t.Errorf("problem without options should default to fill_blank, got %q", ns.Problems[1].Type)
	}
	if ns.Problems[0].Points != 10 || ns.Problems[1].Points != 15 {
		t.Errorf("points = %d, %d", ns.Problems[0].Points, ns.Problems[1].Points)
	}
	if ns.Problems[0].TimeLimit != 120 {
		t.Errorf("time limit = %d, want 120", ns.Problems[0].TimeLimit)
	}
	if doc.Concepts[1].Difficulty != 1 {
		t.Errorf("default difficulty = %d, want 1", doc.Concepts[1].Difficulty)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty",
			yaml: "concepts: []",
			want: "no concepts",
		},
		{
			name: "duplicate slug",
			yaml: `
concepts:
  - {slug: a, name: A}
  - {slug: a, name: A again}
`,
			want: "duplicate slug",
		},
		{
			name: "unknown prerequisite",
			yaml: `
concepts:
  - {slug: a, name: A, prerequisites: [ghost]}
`,
			want: "unknown concept",
		},
		{
			name: "self prerequisite",
			yaml: `
concepts:
  - {slug: a, name: A, prerequisites: [a]}
`,
			want: "itself",
		},
		{
			name: "cycle",
			yaml: `
concepts:
  - {slug: a, name: A, prerequisites: [b]}
  - {slug: b, name: B, prerequisites: [a]}
`,
			want: "cycle",
		},
		{
			name: "difficulty out of range",
			yaml: `
concepts:
  - {slug: a, name: A, difficulty: 9}
`,
			want: "out of range",
		},
		{
			name: "answer not in options",
			yaml: `
concepts:
  - slug: a
    name: A
    problems:
      - question: pick one
        options: [x, y]
        correct_answer: z
`,
			want: "not among the options",
		},
		{
			name: "unknown problem type",
			yaml: `
concepts:
  - slug: a
    name: A
    problems:
      - {question: q, type: essay, correct_answer: c}
`,
			want: "unknown problem type",
		},
		{
			name: "malformed yaml",
			yaml: "concepts: [",
			want: "invalid curriculum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, util.ErrInvalidCurriculum) {
				t.Errorf("error %v should wrap ErrInvalidCurriculum", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestConceptConversion(t *testing.T) {
	doc, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	concept, err := doc.Concepts[1].Concept()
	if err != nil {
		t.Fatalf("Concept() error = %v", err)
	}
	if got := concept.PrerequisiteSlugs(); len(got) != 1 || got[0] != "number_systems" {
		t.Errorf("prerequisites = %v", got)
	}

	first, err := doc.Concepts[0].Concept()
	if err != nil {
		t.Fatalf("Concept() error = %v", err)
	}
	if examples := first.ExampleList(); len(examples) != 1 || examples[0].Answer != "Yes" {
		t.Errorf("examples = %+v", examples)
	}

	problems, err := doc.Concepts[0].PracticeProblems(42)
	if err != nil {
		t.Fatalf("PracticeProblems() error = %v", err)
	}
	if len(problems) != 2 || problems[0].ConceptID != 42 {
		t.Fatalf("problems = %+v", problems)
	}
	if opts := problems[0].OptionList(); len(opts) != 4 {
		t.Errorf("options = %v", opts)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curriculum.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
