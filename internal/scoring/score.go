// Package scoring reduces answered questions to a normalized result. It is
// pure computation: no collaborator calls, no storage, never panics on
// malformed catalog data.
package scoring

import (
	"newme-engine/internal/models"
)

// Score resolves the contribution of an answer to a single question. The
// answer must equal an option's text exactly; no normalization or case
// folding is applied. Unmatched answers and questions without options
// contribute zero.
func Score(q models.Question, answer string) float64 {
	for _, opt := range q.Options {
		if opt.Text == answer {
			return opt.Score.Value()
		}
	}
	return 0
}

// QuestionMax is the highest contribution any option of q can make. A
// question with no options has a max of zero, so yes_no, rating, and text
// questions fall out of the numeric total naturally.
func QuestionMax(q models.Question) float64 {
	var max float64
	for i, opt := range q.Options {
		v := opt.Score.Value()
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}
