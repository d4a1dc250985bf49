package inference

import (
	"strings"

	"mindcare-go/internal/model"
)

// crisisKeywords trigger the crisis response. Matching is a plain substring
// test on lower-cased raw text, so "die" also matches "diet"; over-triggering
// is preferred to missing a crisis statement.
var crisisKeywords = []string{
	"suicide",
	"kill myself",
	"die",
	"hurt myself",
	"death",
	"end my life",
}

const crisisExplanation = "I am really concerned about what you're sharing. " +
	"Please prioritize your safety and reach out to a professional immediately."

var crisisSuggestions = []string{
	"Call 988 Suicide & Crisis Lifeline (or your local emergency number)",
	"Go to the nearest emergency room",
	"Connect with a trusted friend or family member immediately.",
}

// IsHarmful reports whether raw text contains crisis language.
// It must run on the raw input, before Normalize.
func IsHarmful(raw string) bool {
	lower := strings.ToLower(raw)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// CrisisAnalysis returns the fixed High-tier crisis response.
func CrisisAnalysis() model.Analysis {
	suggestions := make([]string, len(crisisSuggestions))
	copy(suggestions, crisisSuggestions)
	return model.Analysis{
		AnxietyLevel: model.HighAnxiety,
		Explanation:  crisisExplanation,
		Suggestions:  suggestions,
	}
}
