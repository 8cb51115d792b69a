// Package progress persists tutorial progress and quiz scores per user.
package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const fileName = "tutorial_progress.json"

type userProgress struct {
	Completed  map[string]bool `json:"completed"`
	QuizScores map[string]int  `json:"quiz_scores"`
}

// Store is a JSON-file-backed record of tutorial completion and quiz scores.
type Store struct {
	mu    sync.RWMutex
	path  string
	users map[string]userProgress
}

// NewStore loads (or initializes) the progress file under dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create progress dir")
	}

	store := &Store{
		path:  filepath.Join(dir, fileName),
		users: make(map[string]userProgress),
	}

	payload, err := os.ReadFile(store.path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read progress file")
	}
	if err := json.Unmarshal(payload, &store.users); err != nil {
		return nil, errors.Wrap(err, "decode progress file")
	}

	return store, nil
}

// Completed returns the set of completed tutorial IDs for the user.
func (s *Store) Completed(username string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool)
	for id, done := range s.users[username].Completed {
		out[id] = done
	}
	return out
}

// QuizScores returns the recorded quiz scores for the user.
func (s *Store) QuizScores(username string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int)
	for id, score := range s.users[username].QuizScores {
		out[id] = score
	}
	return out
}

// SetCompleted marks one tutorial's completion state for the user.
func (s *Store) SetCompleted(username, tutorialID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.ensure(username)
	user.Completed[tutorialID] = completed
	s.users[username] = user
	return s.persist()
}

// SetQuizScore records a quiz score for the user.
func (s *Store) SetQuizScore(username, tutorialID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.ensure(username)
	user.QuizScores[tutorialID] = score
	s.users[username] = user
	return s.persist()
}

// ensure returns the user's record with initialized maps. Caller holds the lock.
func (s *Store) ensure(username string) userProgress {
	user, ok := s.users[username]
	if !ok {
		user = userProgress{}
	}
	if user.Completed == nil {
		user.Completed = make(map[string]bool)
	}
	if user.QuizScores == nil {
		user.QuizScores = make(map[string]int)
	}
	return user
}

// persist writes the progress table atomically. Caller holds the lock.
func (s *Store) persist() error {
	payload, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal progress")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write progress file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist progress file")
	}
	return nil
}
