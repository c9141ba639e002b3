package learning

import (
	"math_quest_backend/internal/model"
	"sort"
)

// CompletedSet 已完成知识点集合，统一以 slug 为键
type CompletedSet map[string]struct{}

func NewCompletedSet(slugs ...string) CompletedSet {
	s := make(CompletedSet, len(slugs))
	for _, slug := range slugs {
		s.Add(slug)
	}
	return s
}

func (s CompletedSet) Add(slug string) {
	if slug != "" {
		s[slug] = struct{}{}
	}
}

func (s CompletedSet) Has(slug string) bool {
	_, ok := s[slug]
	return ok
}

func (s CompletedSet) Len() int {
	return len(s)
}

// IsAvailable 前置知识点全部完成时可学习；没有前置知识点时总是可学习
func IsAvailable(concept *model.Concept, completed CompletedSet) bool {
	for _, prereq := range concept.PrerequisiteSlugs() {
		if !completed.Has(prereq) {
			return false
		}
	}
	return true
}

// Catalog 按课程顺序排列的知识点目录，负责 id 与 slug 的转换
type Catalog struct {
	concepts []model.Concept
	slugByID map[uint]string
	bySlug   map[string]int
}

func NewCatalog(concepts []model.Concept) *Catalog {
	sorted := make([]model.Concept, len(concepts))
	copy(sorted, concepts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	c := &Catalog{
		concepts: sorted,
		slugByID: make(map[uint]string, len(sorted)),
		bySlug:   make(map[string]int, len(sorted)),
	}
	for i := range sorted {
		c.slugByID[sorted[i].ID] = sorted[i].Slug
		c.bySlug[sorted[i].Slug] = i
	}
	return c
}

func (c *Catalog) Concepts() []model.Concept {
	return c.concepts
}

func (c *Catalog) Len() int {
	return len(c.concepts)
}

func (c *Catalog) SlugOf(id uint) (string, bool) {
	slug, ok := c.slugByID[id]
	return slug, ok
}

func (c *Catalog) BySlug(slug string) (*model.Concept, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return nil, false
	}
	return &c.concepts[i], true
}

// CompletedFromIDs 在边界处把知识点 id 一次性转换成 slug，未知 id 忽略
func (c *Catalog) CompletedFromIDs(ids []uint) CompletedSet {
	set := make(CompletedSet, len(ids))
	for _, id := range ids {
		if slug, ok := c.slugByID[id]; ok {
			set.Add(slug)
		}
	}
	return set
}

// CompletedFromRecords 取出已完成的进度记录对应的知识点
func (c *Catalog) CompletedFromRecords(records []model.ProgressRecord) CompletedSet {
	var ids []uint
	for _, r := range records {
		if r.Completed {
			ids = append(ids, r.ConceptID)
		}
	}
	return c.CompletedFromIDs(ids)
}

// NextAvailable 按课程顺序返回第一个未完成且可学习的知识点
func (c *Catalog) NextAvailable(completed CompletedSet) *model.Concept {
	for i := range c.concepts {
		concept := &c.concepts[i]
		if completed.Has(concept.Slug) {
			continue
		}
		if IsAvailable(concept, completed) {
			return concept
		}
	}
	return nil
}

// MissingPrerequisites 返回尚未完成的前置知识点
func MissingPrerequisites(concept *model.Concept, completed CompletedSet) []string {
	var missing []string
	for _, prereq := range concept.PrerequisiteSlugs() {
		if !completed.Has(prereq) {
			missing = append(missing, prereq)
		}
	}
	return missing
}
