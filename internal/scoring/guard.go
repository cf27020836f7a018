package scoring

import "newme-engine/internal/models"

// CanSubmit reports whether every question has some entry in the answer map.
// Presence is what counts; value emptiness is the UI's concern. This guard
// must run before Aggregate, which does not re-validate completeness.
func CanSubmit(questions []models.Question, answers models.Answers) bool {
	return len(answers) >= len(questions)
}

// UnansweredCount is the number of questions with no entry, reported back to
// the caller verbatim in the incomplete-submission message.
func UnansweredCount(questions []models.Question, answers models.Answers) int {
	count := 0
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			count++
		}
	}
	return count
}
