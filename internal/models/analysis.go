// internal/models/analysis.go
package models

// AnswerDetail is one answered question formatted for the AI collaborator.
type AnswerDetail struct {
	QuestionID   string  `json:"questionId"`
	QuestionText string  `json:"questionText"`
	Category     string  `json:"category"`
	Answer       string  `json:"answer"`
	Score        float64 `json:"score"`
}

// AnalysisRequest is the payload submitted for AI analysis.
type AnalysisRequest struct {
	TestType       TestType                 `json:"testType"`
	Answers        []AnswerDetail           `json:"answers"`
	CategoryScores map[string]CategoryScore `json:"categoryScores"`
	TotalScore     float64                  `json:"totalScore"`
	MaxScore       float64                  `json:"maxScore"`
	Percentage     int                      `json:"percentage"`
}

// ElementScore is the AI collaborator's per-element reading. Elements (KAYU,
// API, TANAH, ANGIN, AIR) are finer-grained than categories.
type ElementScore struct {
	Percentage float64 `json:"percentage"`
	Label      string  `json:"label"`
}

// Analysis is the enrichment produced by the AI collaborator. The engine
// never recomputes dominance from ElementScores: ties are broken upstream
// with rules this service has no visibility into.
type Analysis struct {
	Success                bool                    `json:"success"`
	Summary                string                  `json:"summary"`
	PersonalityType        string                  `json:"personalityType"`
	DominantType           string                  `json:"dominantType"`
	ElementScores          map[string]ElementScore `json:"elementScores"`
	DominantElement        string                  `json:"dominantElement"`
	Strengths              []string                `json:"strengths"`
	AreasToImprove         []string                `json:"areasToImprove"`
	CareerRecommendations  []string                `json:"careerRecommendations"`
	Tips                   []string                `json:"tips"`
	Error                  string                  `json:"error,omitempty"`
	Message                string                  `json:"message,omitempty"`
}
