package scoring

import "newme-engine/internal/models"

// DominantElement highlights the element the AI collaborator designated.
// Dominance is never recomputed here: picking the highest percentage locally
// is not equivalent because ties are broken upstream with rules this engine
// cannot see. When the designation is missing or does not appear in the map,
// no dominant element is reported.
func DominantElement(elementScores map[string]models.ElementScore, dominant string) (string, models.ElementScore, bool) {
	if dominant == "" {
		return "", models.ElementScore{}, false
	}
	score, ok := elementScores[dominant]
	if !ok {
		return "", models.ElementScore{}, false
	}
	return dominant, score, true
}
