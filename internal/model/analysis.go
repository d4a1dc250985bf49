package model

import "strings"

// Tier labels produced by the classifier.
const (
	LowAnxiety      = "Low Anxiety"
	ModerateAnxiety = "Moderate Anxiety"
	HighAnxiety     = "High Anxiety"
)

// Analysis is the result of analysing one statement.
type Analysis struct {
	AnxietyLevel string   `json:"anxiety_level"`
	Explanation  string   `json:"explanation"`
	Suggestions  []string `json:"suggestions"`
}

// Insights holds per-tier record counts for one user.
type Insights struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
}

// Add buckets level by substring, checking Low, then Moderate, then High.
// Levels matching none of them are ignored.
func (in *Insights) Add(level string) {
	switch {
	case strings.Contains(level, "Low"):
		in.Low++
	case strings.Contains(level, "Moderate"):
		in.Moderate++
	case strings.Contains(level, "High"):
		in.High++
	}
}

// Total is the number of records counted.
func (in Insights) Total() int {
	return in.Low + in.Moderate + in.High
}
