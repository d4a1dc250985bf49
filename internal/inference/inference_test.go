package inference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcare-go/internal/model"
)

// fixedChooser always returns the same index, clamped to n-1.
type fixedChooser int

func (f fixedChooser) Intn(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func loadTestClassifier(t *testing.T) *LinearClassifier {
	t.Helper()
	vec, err := os.Open(filepath.Join("testdata", "vectorizer.json"))
	require.NoError(t, err)
	defer vec.Close()
	pred, err := os.Open(filepath.Join("testdata", "predictor.json"))
	require.NoError(t, err)
	defer pred.Close()

	c, err := LoadClassifier(vec, pred)
	require.NoError(t, err)
	return c
}

func TestIsHarmful(t *testing.T) {
	harmful := []string{
		"I want to end my life",
		"thinking about SUICIDE lately",
		"sometimes I just want to Kill Myself",
		"I keep thinking about death",
		"I might hurt myself",
	}
	for _, text := range harmful {
		assert.True(t, IsHarmful(text), text)
	}

	safe := []string{
		"I feel calm and happy today",
		"work has been stressful",
		"",
	}
	for _, text := range safe {
		assert.False(t, IsHarmful(text), text)
	}
}

func TestCrisisAnalysisIsFreshCopy(t *testing.T) {
	a := CrisisAnalysis()
	require.Equal(t, model.HighAnxiety, a.AnxietyLevel)
	require.Len(t, a.Suggestions, 3)

	a.Suggestions[0] = "mutated"
	assert.NotEqual(t, "mutated", CrisisAnalysis().Suggestions[0])
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"I can't sleep before my exam tomorrow!": "i cant sleep before my exam tomorrow",
		"  Hello,\tWORLD \n ":                    "hello world",
		"123 !!! ???":                            "",
		"":                                       "",
		"café time":                         "caf time",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestLinearClassifierPredict(t *testing.T) {
	c := loadTestClassifier(t)

	assert.Equal(t, model.LowAnxiety, c.Predict("i feel calm and happy"))
	assert.Equal(t, model.ModerateAnxiety, c.Predict("i am worried and nervous"))
	assert.Equal(t, model.HighAnxiety, c.Predict("i feel hopeless"))
	assert.ElementsMatch(t, []string{model.HighAnxiety, model.LowAnxiety, model.ModerateAnxiety}, c.Classes())
}

func TestLinearClassifierBinary(t *testing.T) {
	c, err := NewLinearClassifier(
		Vectorizer{Vocabulary: map[string]int{"calm": 0, "scared": 1}, IDF: []float64{1, 1}, Norm: "l2"},
		Predictor{
			Classes:   []string{model.LowAnxiety, model.HighAnxiety},
			Coef:      [][]float64{{-1, 1}},
			Intercept: []float64{0},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, model.HighAnxiety, c.Predict("so scared"))
	assert.Equal(t, model.LowAnxiety, c.Predict("very calm"))
}

func TestSublinearTFDampensRepeats(t *testing.T) {
	vec := Vectorizer{
		Vocabulary:  map[string]int{"calm": 0, "worried": 1},
		IDF:         []float64{1, 1},
		SublinearTF: true,
	}
	got := vec.transform("worried worried worried worried calm")
	assert.InDelta(t, 1.0, got[0], 1e-9)
	assert.Greater(t, got[1], 2.0)
	assert.Less(t, got[1], 4.0)
}

func TestNewLinearClassifierRejectsMismatchedArtifacts(t *testing.T) {
	vec := Vectorizer{Vocabulary: map[string]int{"a": 0, "bb": 1}, IDF: []float64{1, 1}}

	_, err := NewLinearClassifier(vec, Predictor{
		Classes:   []string{model.LowAnxiety, model.ModerateAnxiety, model.HighAnxiety},
		Coef:      [][]float64{{1, 1}, {1, 1}},
		Intercept: []float64{0, 0},
	})
	assert.Error(t, err)

	_, err = NewLinearClassifier(vec, Predictor{
		Classes:   []string{model.LowAnxiety, model.HighAnxiety},
		Coef:      [][]float64{{1, 1, 1}},
		Intercept: []float64{0},
	})
	assert.Error(t, err)

	_, err = NewLinearClassifier(Vectorizer{Vocabulary: map[string]int{"a": 3}, IDF: []float64{1}}, Predictor{})
	assert.Error(t, err)

	_, err = LoadClassifier(strings.NewReader("{"), strings.NewReader("{}"))
	assert.Error(t, err)
}

func assertUnique(t *testing.T, items []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item], "duplicate suggestion %q", item)
		seen[item] = true
	}
}

func TestComposeSleepAndSchool(t *testing.T) {
	c := NewSuggestionComposer(fixedChooser(0))
	cleaned := Normalize("I can't sleep before my exam tomorrow")

	assert.Equal(t, []string{"Sleep", "School"}, ActiveTopics(cleaned))

	got := c.Compose(model.ModerateAnxiety, cleaned)
	require.Len(t, got, model.MaxSuggestions)
	assertUnique(t, got)
	assert.True(t, containsAny(got, topicBuckets[0].Suggestions), "expected a sleep suggestion in %v", got)
	assert.True(t, containsAny(got, topicBuckets[3].Suggestions), "expected a school suggestion in %v", got)
}

func TestActiveTopicsMatchesWholeWords(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"I lost interest in my classic car upgrade", nil},
		{"I have been resting but my classes are piling up", []string{"Sleep", "School"}},
		{"my grades dropped and I feel restless", []string{"Sleep", "School"}},
		{"I am so tired of being judged at parties", []string{"Sleep", "Social"}},
		{"my heart racing wakes me", []string{"Panic"}},
		{"my heart is racing", nil},
		{"I want to talk to someone", []string{"Social"}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ActiveTopics(Normalize(tc.text)))
		})
	}
}

func TestComposeWithoutTopicsUsesWholeGeneralSet(t *testing.T) {
	for i := range generalSuggestions[model.ModerateAnxiety] {
		c := NewSuggestionComposer(fixedChooser(i))
		got := c.Compose(model.ModerateAnxiety, "i feel uneasy")
		assert.ElementsMatch(t, generalSuggestions[model.ModerateAnxiety][i], got)
	}
}

func TestComposeTopUpTakesFirstTwoGeneral(t *testing.T) {
	c := NewSuggestionComposer(fixedChooser(1))
	got := c.Compose(model.LowAnxiety, "my chest feels tight")

	general := generalSuggestions[model.LowAnxiety][1]
	want := append(append([]string{}, topicBuckets[4].Suggestions...), general[0])
	assert.ElementsMatch(t, want, got)
	assert.NotContains(t, got, general[2])
}

func TestComposeUnknownLabel(t *testing.T) {
	c := NewSuggestionComposer(fixedChooser(0))

	assert.Empty(t, c.Compose("Unknown", "nothing matches here"))

	got := c.Compose("Unknown", "panic")
	assert.ElementsMatch(t, topicBuckets[4].Suggestions, got)
}

func TestComposeDeduplicatesAcrossPools(t *testing.T) {
	saved := topicBuckets
	defer func() { topicBuckets = saved }()
	topicBuckets = []TopicBucket{{
		Name:        "Dup",
		Keywords:    []string{"dup"},
		Suggestions: []string{generalSuggestions[model.HighAnxiety][0][0]},
	}}

	c := NewSuggestionComposer(fixedChooser(0))
	got := c.Compose(model.HighAnxiety, "dup")
	assertUnique(t, got)
	assert.Len(t, got, 2)
}

func TestComposeBoundsForManyTopics(t *testing.T) {
	c := NewSuggestionComposer(NewRandomChooser())
	cleaned := "panic at work and school cant sleep around people"
	for i := 0; i < 50; i++ {
		got := c.Compose(model.HighAnxiety, cleaned)
		assert.LessOrEqual(t, len(got), model.MaxSuggestions)
		assertUnique(t, got)
	}
}

func TestEmpathySelector(t *testing.T) {
	s := NewEmpathySelector(fixedChooser(1))
	assert.Equal(t, empathyPhrases[model.HighAnxiety][1], s.Phrase(model.HighAnxiety))
	assert.Empty(t, s.Phrase("Unknown"))
}

func TestExplain(t *testing.T) {
	assert.Equal(t,
		"Based on your input, the model predicts Low Anxiety. You seem fine.",
		Explain(model.LowAnxiety, "You seem fine."))
	assert.Equal(t,
		"Based on your input, the model predicts Unknown.",
		Explain("Unknown", ""))
}

func containsAny(got, candidates []string) bool {
	for _, g := range got {
		for _, c := range candidates {
			if g == c {
				return true
			}
		}
	}
	return false
}
