package inference

import (
	"strings"

	"mindcare-go/internal/model"
)

// TopicBucket injects topic-specific suggestions when any keyword occurs in
// the cleaned text. A single-word keyword matches a whole word or that word
// plus an inflection suffix ("class" matches "classes" but not "classic");
// a multi-word keyword matches the same phrase of whole words.
type TopicBucket struct {
	Name        string
	Keywords    []string
	Suggestions []string
}

// topicBuckets are scanned in declaration order.
var topicBuckets = []TopicBucket{
	{
		Name:     "Sleep",
		Keywords: []string{"sleep", "slept", "sleepless", "insomnia", "awake", "nightmare", "tired", "exhausted", "rest", "restless"},
		Suggestions: []string{
			"Keep a consistent bedtime and wake-up time, even on weekends.",
			"Put screens away for 30 minutes before bed.",
			"Try a slow body-scan meditation while lying down.",
		},
	},
	{
		Name:     "Work",
		Keywords: []string{"work", "job", "boss", "deadline", "office", "coworker", "career"},
		Suggestions: []string{
			"Break today's tasks into small, concrete steps.",
			"Schedule short breaks away from your desk.",
			"Talk to your manager about priorities if the load feels unmanageable.",
		},
	},
	{
		Name:     "Social",
		Keywords: []string{"people", "party", "parties", "friend", "crowd", "social", "embarrass", "talk to", "judge", "judged", "judging"},
		Suggestions: []string{
			"Start with short, low-pressure conversations.",
			"Remind yourself that most people focus on themselves, not on you.",
			"Plan an exit or a break before social events.",
		},
	},
	{
		Name:     "School",
		Keywords: []string{"exam", "school", "class", "homework", "study", "studies", "grade", "college", "university", "teacher"},
		Suggestions: []string{
			"Use a study timer: 25 minutes focused, 5 minutes rest.",
			"Review a little each day instead of cramming.",
			"Ask a teacher or classmate for help with difficult topics.",
		},
	},
	{
		Name:     "Panic",
		Keywords: []string{"panic", "heart racing", "cant breathe", "shaking", "dizzy", "chest"},
		Suggestions: []string{
			"Breathe in for 4 seconds, hold for 7, and exhale for 8.",
			"Name 5 things you can see, 4 you can touch and 3 you can hear.",
			"Hold something cold and focus on the sensation.",
		},
	},
}

// generalSuggestions holds several candidate sets per tier; one set is chosen per call.
var generalSuggestions = map[string][][]string{
	model.LowAnxiety: {
		{
			"Great to hear you are feeling okay!",
			"Maintain your routine and stay hydrated.",
			"Keep practicing mindfulness to stay balanced.",
		},
		{
			"Write down three things that went well today.",
			"Keep up regular physical activity.",
			"Check in with a friend and share how you are doing.",
		},
		{
			"Enjoy a hobby that helps you recharge.",
			"Spend a few minutes outside in fresh air.",
			"Keep a steady sleep schedule.",
		},
	},
	model.ModerateAnxiety: {
		{
			"Try some deep breathing exercises (4-7-8 technique).",
			"Take a short walk or break to clear your mind.",
			"Practice grounding techniques like identifying 5 things you see.",
			"Listen to calming music.",
		},
		{
			"Write your worries down and set them aside for later.",
			"Limit caffeine for the rest of the day.",
			"Stretch gently for five minutes.",
		},
		{
			"Focus on one small task you can finish now.",
			"Talk through what is bothering you with someone you trust.",
			"Try progressive muscle relaxation.",
			"Reduce time on news and social media today.",
		},
	},
	model.HighAnxiety: {
		{
			"Please consider reaching out to a mental health professional.",
			"Connect with a trusted friend or family member immediately.",
			"Practice deep grounding exercises.",
			"Remember, this feeling is temporary and you are not alone.",
		},
		{
			"Contact a counselor or therapist as soon as you can.",
			"Move to a quiet, safe space and slow your breathing.",
			"Let someone close to you know how you are feeling.",
		},
		{
			"Consider calling a support line to talk things through.",
			"Focus only on the next few minutes, not the whole day.",
			"Avoid being alone if the feeling keeps growing.",
			"Use a grounding exercise: press your feet firmly into the floor.",
		},
	},
}

// topicTopUp is how many general suggestions are added after topic suggestions.
const topicTopUp = 2

// SuggestionComposer builds the coping suggestions for a tier.
type SuggestionComposer struct {
	chooser Chooser
}

// NewSuggestionComposer creates a composer that picks general sets with chooser.
func NewSuggestionComposer(chooser Chooser) *SuggestionComposer {
	return &SuggestionComposer{chooser: chooser}
}

// inflections are the word endings a single-word keyword tolerates.
var inflections = []string{"", "s", "es", "ed", "ing"}

// ActiveTopics returns the names of buckets whose keywords occur in cleaned.
func ActiveTopics(cleaned string) []string {
	words := strings.Fields(cleaned)
	var names []string
	for _, bucket := range topicBuckets {
		if bucket.matches(words) {
			names = append(names, bucket.Name)
		}
	}
	return names
}

func (b TopicBucket) matches(words []string) bool {
	for _, keyword := range b.Keywords {
		if strings.Contains(keyword, " ") {
			if containsPhrase(words, strings.Fields(keyword)) {
				return true
			}
			continue
		}
		for _, w := range words {
			if matchesWord(w, keyword) {
				return true
			}
		}
	}
	return false
}

func matchesWord(word, keyword string) bool {
	if !strings.HasPrefix(word, keyword) {
		return false
	}
	suffix := word[len(keyword):]
	for _, s := range inflections {
		if suffix == s {
			return true
		}
	}
	return false
}

func containsPhrase(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Compose returns at most model.MaxSuggestions unique suggestions for label.
// Topic suggestions come first; a random general set fills the list when no
// topic is active, otherwise only its first two entries top it up. An unknown
// label contributes no general suggestions. Callers must rely on membership
// and count only, not order.
func (c *SuggestionComposer) Compose(label, cleaned string) []string {
	words := strings.Fields(cleaned)
	var acc []string
	for _, bucket := range topicBuckets {
		if bucket.matches(words) {
			acc = append(acc, bucket.Suggestions...)
		}
	}

	if sets := generalSuggestions[label]; len(sets) > 0 {
		general := sets[c.chooser.Intn(len(sets))]
		if len(acc) > 0 && len(general) > topicTopUp {
			general = general[:topicTopUp]
		}
		acc = append(acc, general...)
	}

	return truncate(dedupe(acc), model.MaxSuggestions)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func truncate(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
