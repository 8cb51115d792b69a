package domain

// Tutorial difficulty levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// TutorialSection is one lesson in the tutorial catalog.
type TutorialSection struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Level       string      `json:"level"`
	Category    string      `json:"category"`
	Content     string      `json:"content"`
	Tags        []string    `json:"tags,omitempty"`
	CaseStudies []CaseStudy `json:"case_studies,omitempty"`
}

// CaseStudy is a worked real-company example attached to a lesson.
type CaseStudy struct {
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Company            string            `json:"company"`
	Timeframe          string            `json:"timeframe"`
	LearningObjectives []string          `json:"learning_objectives"`
	Data               map[string]string `json:"data"`
	Analysis           string            `json:"analysis"`
}

// Question is a single multiple-choice quiz question. Answer is the index of
// the correct option.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"-"`
}

// Quiz is the set of questions attached to a tutorial.
type Quiz struct {
	TutorialID string     `json:"tutorial_id"`
	Questions  []Question `json:"questions"`
}

// Exercise is a free-form practice task with an expected answer.
type Exercise struct {
	TutorialID string `json:"tutorial_id"`
	Prompt     string `json:"prompt"`
	Answer     string `json:"-"`
}

// QuizResult is the outcome of grading one quiz submission.
type QuizResult struct {
	TutorialID string `json:"tutorial_id"`
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Score      int    `json:"score"`
	Passed     bool   `json:"passed"`
}

// TutorialProgress is one user's state across the catalog.
type TutorialProgress struct {
	Completed      map[string]bool `json:"completed"`
	QuizScores     map[string]int  `json:"quiz_scores"`
	CompletedCount int             `json:"completed_count"`
	OverallPercent int             `json:"overall_percent"`
}
