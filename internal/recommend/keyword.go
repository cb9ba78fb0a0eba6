package recommend

import "strings"

// Keyword match weights. A symptom phrase is the strongest signal, a
// treated-condition word is weaker, a procedure name weaker still.
const (
	symptomWeight    = 0.8
	conditionWeight  = 0.6
	procedureWeight  = 0.4
	multiMatchFactor = 1.1
)

// KeywordScores scans the knowledge base against the query and returns a
// confidence score per matched specialization, capped at 1.0. A
// specialization matching more than one distinct item gets a mild
// multi-signal boost before the cap.
func KeywordScores(query string) map[string]float64 {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	scores := make(map[string]float64)
	if queryLower == "" {
		return scores
	}

	for spec, profile := range KnowledgeBase {
		score := 0.0
		matched := 0

		for _, symptom := range profile.SymptomKeywords {
			if strings.Contains(queryLower, strings.ToLower(symptom)) {
				score += symptomWeight
				matched++
			}
		}

		for _, condition := range profile.ConditionsTreated {
			if conditionWordInQuery(condition, queryLower) {
				score += conditionWeight
				matched++
			}
		}

		for _, procedure := range profile.ProceduresTests {
			if strings.Contains(queryLower, strings.ToLower(procedure)) {
				score += procedureWeight
				matched++
			}
		}

		if matched > 1 {
			score *= multiMatchFactor
		}
		if score > 0 {
			scores[spec] = min(score, 1.0)
		}
	}

	return scores
}

// conditionWordInQuery reports whether any word of the condition phrase
// longer than 3 characters appears in the query. Short words like "of"
// or "the" would match everything.
func conditionWordInQuery(condition, queryLower string) bool {
	for _, word := range strings.Fields(strings.ToLower(condition)) {
		if len(word) > 3 && strings.Contains(queryLower, word) {
			return true
		}
	}
	return false
}
