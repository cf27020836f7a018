// Package session holds the ephemeral state of an in-progress test. Sessions
// are client-local in spirit: they live in the injected store with a TTL and
// carry no durability guarantee.
package session

import (
	"newme-engine/internal/models"
)

// TestSession is one user's in-progress test. The question set is fetched
// once at start and never changes for the session's lifetime; the answer map
// grows monotonically as the user progresses.
type TestSession struct {
	ID            string               `json:"id"`
	UserEmail     string               `json:"userEmail"`
	TestType      models.TestType      `json:"testType"`
	Category      string               `json:"category"`
	Questions     []models.Question    `json:"questions"`
	Answers       models.Answers       `json:"answers"`
	CurrentIndex  int                  `json:"currentIndex"`
	RecordOutcome models.RecordOutcome `json:"recordOutcome"`
}

// Answer stores the chosen value for a question. Existing entries are
// overwritten when the user changes their mind; keys are never removed.
func (s *TestSession) Answer(questionID, value string) {
	if s.Answers == nil {
		s.Answers = models.Answers{}
	}
	s.Answers[questionID] = value
}

// Next advances the question pointer, clamped to the last question.
func (s *TestSession) Next() {
	if s.CurrentIndex < len(s.Questions)-1 {
		s.CurrentIndex++
	}
}

// Prev moves the question pointer back, clamped to the first question.
func (s *TestSession) Prev() {
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
}

// Seek jumps to a question index, clamped to the valid range.
func (s *TestSession) Seek(index int) {
	if index < 0 {
		index = 0
	}
	if max := len(s.Questions) - 1; index > max {
		if max < 0 {
			max = 0
		}
		index = max
	}
	s.CurrentIndex = index
}

// Reset discards all progress for a "test again" restart. The question set
// is kept; answers and position are cleared.
func (s *TestSession) Reset() {
	s.Answers = models.Answers{}
	s.CurrentIndex = 0
}

// AnsweredCount is the number of questions with an entry in the answer map.
func (s *TestSession) AnsweredCount() int {
	return len(s.Answers)
}
