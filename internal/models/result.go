// internal/models/result.go
package models

// CategoryScore is the per-category score bucket. Category labels are opaque
// pass-through data from the catalog, not domain logic.
type CategoryScore struct {
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
}

// Result is the aggregated outcome of a submitted test.
type Result struct {
	TotalScore     float64                  `json:"totalScore"`
	MaxScore       float64                  `json:"maxScore"`
	Percentage     int                      `json:"percentage"`
	CategoryScores map[string]CategoryScore `json:"categoryScores"`
	TestType       TestType                 `json:"testType"`
}
