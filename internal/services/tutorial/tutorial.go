// Package tutorial serves the built-in lesson catalog, grades quizzes and
// tracks per-user learning progress.
package tutorial

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/domain"
)

// passingScore is the minimum quiz score, in percent, that counts as a pass.
const passingScore = 70

var (
	ErrTutorialNotFound = errors.New("tutorial not found")
	ErrNoQuiz           = errors.New("tutorial has no quiz")
	ErrNoExercise       = errors.New("tutorial has no exercise")
)

// Progress persists completion flags and quiz scores per user.
type Progress interface {
	Completed(username string) map[string]bool
	QuizScores(username string) map[string]int
	SetCompleted(username, tutorialID string, completed bool) error
	SetQuizScore(username, tutorialID string, score int) error
}

type Service struct {
	sections  []domain.TutorialSection
	byID      map[string]domain.TutorialSection
	quizzes   map[string]domain.Quiz
	exercises map[string]domain.Exercise
	progress  Progress
	logger    *zap.Logger
}

func NewService(progress Progress, logger *zap.Logger) (*Service, error) {
	if progress == nil {
		return nil, errors.New("progress store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	sections := catalog()
	byID := make(map[string]domain.TutorialSection, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	return &Service{
		sections:  sections,
		byID:      byID,
		quizzes:   quizzes(),
		exercises: exercises(),
		progress:  progress,
		logger:    logger,
	}, nil
}

// All returns the catalog in curriculum order.
func (s *Service) All() []domain.TutorialSection {
	out := make([]domain.TutorialSection, len(s.sections))
	copy(out, s.sections)
	return out
}

func (s *Service) Get(tutorialID string) (domain.TutorialSection, error) {
	section, ok := s.byID[tutorialID]
	if !ok {
		return domain.TutorialSection{}, errors.Wrap(ErrTutorialNotFound, tutorialID)
	}
	return section, nil
}

// Search matches the term against title, content and tags, case-insensitive.
// An empty term returns the whole catalog.
func (s *Service) Search(term string) []domain.TutorialSection {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.All()
	}

	var out []domain.TutorialSection
	for _, section := range s.sections {
		if strings.Contains(strings.ToLower(section.Title), term) ||
			strings.Contains(strings.ToLower(section.Content), term) ||
			tagsMatch(section.Tags, term) {
			out = append(out, section)
		}
	}
	return out
}

func tagsMatch(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (s *Service) ByLevel(level string) []domain.TutorialSection {
	level = strings.TrimSpace(level)
	if level == "" {
		return s.All()
	}

	var out []domain.TutorialSection
	for _, section := range s.sections {
		if strings.EqualFold(section.Level, level) {
			out = append(out, section)
		}
	}
	return out
}

func (s *Service) ByCategory(category string) []domain.TutorialSection {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return s.All()
	}

	var out []domain.TutorialSection
	for _, section := range s.sections {
		if strings.Contains(strings.ToLower(section.Category), category) {
			out = append(out, section)
		}
	}
	return out
}

func (s *Service) Quiz(tutorialID string) (domain.Quiz, error) {
	if _, ok := s.byID[tutorialID]; !ok {
		return domain.Quiz{}, errors.Wrap(ErrTutorialNotFound, tutorialID)
	}
	quiz, ok := s.quizzes[tutorialID]
	if !ok {
		return domain.Quiz{}, errors.Wrap(ErrNoQuiz, tutorialID)
	}
	return quiz, nil
}

// SubmitQuiz grades the answers, records the score, and marks the tutorial
// complete when the score passes. Answers map question index to the chosen
// option index; unanswered questions count as wrong.
func (s *Service) SubmitQuiz(username, tutorialID string, answers map[int]int) (domain.QuizResult, error) {
	quiz, err := s.Quiz(tutorialID)
	if err != nil {
		return domain.QuizResult{}, err
	}

	correct := 0
	for i, q := range quiz.Questions {
		if chosen, ok := answers[i]; ok && chosen == q.Answer {
			correct++
		}
	}

	total := len(quiz.Questions)
	score := correct * 100 / total
	passed := score >= passingScore

	if err := s.progress.SetQuizScore(username, tutorialID, score); err != nil {
		return domain.QuizResult{}, errors.Wrap(err, "save quiz score")
	}
	if passed {
		if err := s.progress.SetCompleted(username, tutorialID, true); err != nil {
			return domain.QuizResult{}, errors.Wrap(err, "mark tutorial complete")
		}
	}

	s.logger.Info("quiz graded",
		zap.String("user", username),
		zap.String("tutorial", tutorialID),
		zap.Int("score", score),
		zap.Bool("passed", passed))

	return domain.QuizResult{
		TutorialID: tutorialID,
		Correct:    correct,
		Total:      total,
		Score:      score,
		Passed:     passed,
	}, nil
}

func (s *Service) Exercise(tutorialID string) (domain.Exercise, error) {
	if _, ok := s.byID[tutorialID]; !ok {
		return domain.Exercise{}, errors.Wrap(ErrTutorialNotFound, tutorialID)
	}
	ex, ok := s.exercises[tutorialID]
	if !ok {
		return domain.Exercise{}, errors.Wrap(ErrNoExercise, tutorialID)
	}
	return ex, nil
}

// ValidateExercise compares the answer, ignoring case and surrounding space.
func (s *Service) ValidateExercise(tutorialID, answer string) (bool, error) {
	ex, err := s.Exercise(tutorialID)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), ex.Answer), nil
}

// SetCompleted records a manual completion toggle for a tutorial.
func (s *Service) SetCompleted(username, tutorialID string, completed bool) error {
	if _, ok := s.byID[tutorialID]; !ok {
		return errors.Wrap(ErrTutorialNotFound, tutorialID)
	}
	return s.progress.SetCompleted(username, tutorialID, completed)
}

// UserProgress reports completion flags, quiz scores and the overall percent
// of the catalog completed.
func (s *Service) UserProgress(username string) domain.TutorialProgress {
	completed := s.progress.Completed(username)
	count := 0
	for _, done := range completed {
		if done {
			count++
		}
	}

	percent := 0
	if len(s.sections) > 0 {
		percent = count * 100 / len(s.sections)
	}

	return domain.TutorialProgress{
		Completed:      completed,
		QuizScores:     s.progress.QuizScores(username),
		CompletedCount: count,
		OverallPercent: percent,
	}
}
