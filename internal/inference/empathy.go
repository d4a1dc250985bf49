package inference

import (
	"fmt"

	"mindcare-go/internal/model"
)

var empathyPhrases = map[string][]string{
	model.LowAnxiety: {
		"It sounds like you are in a good headspace.",
		"It's great that you're feeling steady right now.",
		"You seem to be handling things well.",
	},
	model.ModerateAnxiety: {
		"It is completely normal to feel this way sometimes.",
		"That sounds stressful, and your feelings are valid.",
		"Many people feel this way, and it can get easier.",
		"Thank you for sharing how you feel.",
	},
	model.HighAnxiety: {
		"Please remember that this feeling is temporary and you are not alone.",
		"I'm sorry you are going through this. Support is available.",
		"What you're feeling matters, and reaching out is a strong step.",
	},
}

// EmpathySelector picks a supportive phrase for a tier.
type EmpathySelector struct {
	chooser Chooser
}

// NewEmpathySelector creates a selector that picks phrases with chooser.
func NewEmpathySelector(chooser Chooser) *EmpathySelector {
	return &EmpathySelector{chooser: chooser}
}

// Phrase returns a random phrase for label, or "" for an unknown label.
func (s *EmpathySelector) Phrase(label string) string {
	pool := empathyPhrases[label]
	if len(pool) == 0 {
		return ""
	}
	return pool[s.chooser.Intn(len(pool))]
}

// Explain formats the explanation returned with a prediction.
func Explain(label, phrase string) string {
	if phrase == "" {
		return fmt.Sprintf("Based on your input, the model predicts %s.", label)
	}
	return fmt.Sprintf("Based on your input, the model predicts %s. %s", label, phrase)
}
