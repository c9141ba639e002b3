package model

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Concept 课程中的一个数学知识点
type Concept struct {
	BaseModel
	Name            string         `gorm:"size:100;not null" json:"name"`
	Slug            string         `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	Difficulty      int            `gorm:"default:1" json:"difficulty"` // 1-5
	Order           int            `gorm:"column:order_in_curriculum;index;not null" json:"order"`
	Category        string         `gorm:"size:50;not null" json:"category"`
	LessonContent   string         `gorm:"type:text;not null" json:"lessonContent"`
	Examples        datatypes.JSON `json:"examples,omitempty"`
	Prerequisites   string         `gorm:"size:200" json:"-"` // 逗号分隔的 slug
	IllustrationURL string         `gorm:"size:255" json:"illustrationUrl,omitempty"`
	IllustrationKey string         `gorm:"size:255" json:"-"` // 存储中的对象键，替换插图时删除旧对象

	Problems []PracticeProblem `gorm:"foreignKey:ConceptID" json:"-"`
}

func (Concept) TableName() string {
	return "concepts"
}

// ConceptExample 课程中的例题
type ConceptExample struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// PrerequisiteSlugs 返回去重后的前置知识点 slug，保持原有顺序
func (c *Concept) PrerequisiteSlugs() []string {
	if c.Prerequisites == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range strings.Split(c.Prerequisites, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (c *Concept) SetPrerequisites(slugs []string) {
	c.Prerequisites = strings.Join(slugs, ",")
}

func (c *Concept) ExampleList() []ConceptExample {
	if len(c.Examples) == 0 {
		return nil
	}
	var out []ConceptExample
	if err := json.Unmarshal(c.Examples, &out); err != nil {
		return nil
	}
	return out
}

// ConceptSummary 概念列表项
type ConceptSummary struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Difficulty    int      `json:"difficulty"`
	Order         int      `json:"order"`
	Category      string   `json:"category"`
	Prerequisites []string `json:"prerequisites"`
}

func (c *Concept) Summary() ConceptSummary {
	prereqs := c.PrerequisiteSlugs()
	if prereqs == nil {
		prereqs = []string{}
	}
	return ConceptSummary{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		Difficulty:    c.Difficulty,
		Order:         c.Order,
		Category:      c.Category,
		Prerequisites: prereqs,
	}
}
