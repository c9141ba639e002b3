package curriculum

// Document 课程种子文件
type Document struct {
	Version  int           `yaml:"version"`
	Concepts []ConceptSpec `yaml:"concepts"`
}

type ConceptSpec struct {
	Slug          string        `yaml:"slug"`
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description"`
	Category      string        `yaml:"category"`
	Difficulty    int           `yaml:"difficulty"`
	Order         int           `yaml:"order"`
	Prerequisites []string      `yaml:"prerequisites"`
	LessonContent string        `yaml:"lesson_content"`
	Examples      []ExampleSpec `yaml:"examples"`
	Problems      []ProblemSpec `yaml:"problems"`
}

type ExampleSpec struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type ProblemSpec struct {
	Question      string   `yaml:"question"`
	Type          string   `yaml:"type"`
	Difficulty    int      `yaml:"difficulty"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Options       []string `yaml:"options"`
	Explanation   string   `yaml:"explanation"`
	Points        int      `yaml:"points"`
	TimeLimit     int      `yaml:"time_limit"`
}
