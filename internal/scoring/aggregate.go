package scoring

import (
	"math"

	"newme-engine/internal/models"
)

// Aggregate reduces the full question set and the answer map into a Result.
// Unanswered questions contribute zero but their max still counts toward
// MaxScore, so an incomplete sheet cannot inflate the percentage. Category
// buckets are created on first encounter and accrue max the same way.
func Aggregate(questions []models.Question, answers models.Answers, testType models.TestType) models.Result {
	result := models.Result{
		CategoryScores: make(map[string]models.CategoryScore),
		TestType:       testType,
	}

	for _, q := range questions {
		score := Score(q, answers[q.ID])
		max := QuestionMax(q)

		result.TotalScore += score
		result.MaxScore += max

		bucket := result.CategoryScores[q.Category]
		bucket.Score += score
		bucket.Max += max
		result.CategoryScores[q.Category] = bucket
	}

	if result.MaxScore > 0 {
		result.Percentage = int(math.Round(result.TotalScore / result.MaxScore * 100))
	}

	return result
}

// FormatAnswers flattens the answer sheet for the AI analysis collaborator,
// preserving question order.
func FormatAnswers(questions []models.Question, answers models.Answers) []models.AnswerDetail {
	details := make([]models.AnswerDetail, 0, len(questions))
	for _, q := range questions {
		answer := answers[q.ID]
		details = append(details, models.AnswerDetail{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Category:     q.Category,
			Answer:       answer,
			Score:        Score(q, answer),
		})
	}
	return details
}
