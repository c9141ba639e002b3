package curriculum

import (
	"encoding/json"
	"fmt"
	"math_quest_backend/internal/learning"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/util"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

const (
	defaultPoints    = 10
	defaultTimeLimit = 120
	maxDifficulty    = 5
)

// LoadFile 读取并校验课程种子文件
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading curriculum %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidCurriculum, err)
	}
	doc.normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) normalize() {
	for i := range d.Concepts {
		c := &d.Concepts[i]
		c.Slug = strings.TrimSpace(c.Slug)
		if c.Order == 0 {
			c.Order = i + 1
		}
		if c.Difficulty == 0 {
			c.Difficulty = 1
		}
		prereqs := c.Prerequisites[:0]
		for _, p := range c.Prerequisites {
			if p = strings.TrimSpace(p); p != "" {
				prereqs = append(prereqs, p)
			}
		}
		c.Prerequisites = prereqs

		for j := range c.Problems {
			p := &c.Problems[j]
			if p.Type == "" {
				p.Type = string(model.FillBlank)
				if len(p.Options) > 0 {
					p.Type = string(model.MultipleChoice)
				}
			}
			if p.Difficulty == 0 {
				p.Difficulty = c.Difficulty
			}
			if p.Points == 0 {
				p.Points = defaultPoints
			}
			if p.TimeLimit == 0 {
				p.TimeLimit = defaultTimeLimit
			}
		}
	}
}

// Validate 检查 slug 唯一、前置知识点存在且无环、题目完整
func (d *Document) Validate() error {
	if len(d.Concepts) == 0 {
		return fmt.Errorf("%w: no concepts", util.ErrInvalidCurriculum)
	}

	index := make(map[string]int, len(d.Concepts))
	for i, c := range d.Concepts {
		if c.Slug == "" || c.Name == "" {
			return fmt.Errorf("%w: concept #%d needs a slug and a name", util.ErrInvalidCurriculum, i+1)
		}
		if _, dup := index[c.Slug]; dup {
			return fmt.Errorf("%w: duplicate slug %q", util.ErrInvalidCurriculum, c.Slug)
		}
		if c.Difficulty < 1 || c.Difficulty > maxDifficulty {
			return fmt.Errorf("%w: %s difficulty %d out of range", util.ErrInvalidCurriculum, c.Slug, c.Difficulty)
		}
		index[c.Slug] = i
	}

	for _, c := range d.Concepts {
		for _, p := range c.Prerequisites {
			if p == c.Slug {
				return fmt.Errorf("%w: %s lists itself as a prerequisite", util.ErrInvalidCurriculum, c.Slug)
			}
			if _, ok := index[p]; !ok {
				return fmt.Errorf("%w: %s requires unknown concept %q", util.ErrInvalidCurriculum, c.Slug, p)
			}
		}
		for j, p := range c.Problems {
			if err := p.validate(); err != nil {
				return fmt.Errorf("%w: %s problem #%d: %v", util.ErrInvalidCurriculum, c.Slug, j+1, err)
			}
		}
	}

	return d.checkCycles(index)
}

func (p ProblemSpec) validate() error {
	if strings.TrimSpace(p.Question) == "" {
		return fmt.Errorf("empty question")
	}
	if strings.TrimSpace(p.CorrectAnswer) == "" {
		return fmt.Errorf("empty correct answer")
	}
	if p.Points < 0 || p.TimeLimit < 0 {
		return fmt.Errorf("negative points or time limit")
	}
	switch model.ProblemType(p.Type) {
	case model.FillBlank:
	case model.MultipleChoice:
		want := learning.NormalizeAnswer(p.CorrectAnswer)
		for _, o := range p.Options {
			if learning.NormalizeAnswer(o) == want {
				return nil
			}
		}
		return fmt.Errorf("correct answer %q is not among the options", p.CorrectAnswer)
	default:
		return fmt.Errorf("unknown problem type %q", p.Type)
	}
	return nil
}

// checkCycles 有环的前置关系会让环上的知识点永远无法解锁
func (d *Document) checkCycles(index map[string]int) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(d.Concepts))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case visiting:
			return fmt.Errorf("%w: prerequisite cycle through %s", util.ErrInvalidCurriculum, d.Concepts[i].Slug)
		case done:
			return nil
		}
		state[i] = visiting
		for _, p := range d.Concepts[i].Prerequisites {
			if err := visit(index[p]); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}

	for i := range d.Concepts {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

// Concept 转换成数据库模型（不含 id）
func (c ConceptSpec) Concept() (model.Concept, error) {
	concept := model.Concept{
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		Difficulty:    c.Difficulty,
		Order:         c.Order,
		Category:      c.Category,
		LessonContent: c.LessonContent,
	}
	concept.SetPrerequisites(c.Prerequisites)

	if len(c.Examples) > 0 {
		examples := make([]model.ConceptExample, len(c.Examples))
		for i, e := range c.Examples {
			examples[i] = model.ConceptExample{Question: e.Question, Answer: e.Answer}
		}
		raw, err := json.Marshal(examples)
		if err != nil {
			return model.Concept{}, err
		}
		concept.Examples = datatypes.JSON(raw)
	}
	return concept, nil
}

// PracticeProblems 转换成数据库模型，归属到 conceptID
func (c ConceptSpec) PracticeProblems(conceptID uint) ([]model.PracticeProblem, error) {
	problems := make([]model.PracticeProblem, 0, len(c.Problems))
	for _, p := range c.Problems {
		problem := model.PracticeProblem{
			ConceptID:     conceptID,
			Question:      p.Question,
			ProblemType:   model.ProblemType(p.Type),
			Difficulty:    p.Difficulty,
			CorrectAnswer: p.CorrectAnswer,
			Explanation:   p.Explanation,
			Points:        p.Points,
			TimeLimit:     p.TimeLimit,
		}
		if len(p.Options) > 0 {
			raw, err := json.Marshal(p.Options)
			if err != nil {
				return nil, err
			}
			problem.Options = datatypes.JSON(raw)
		}
		problems = append(problems, problem)
	}
	return problems, nil
}
