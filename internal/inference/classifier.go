package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Classifier maps cleaned, non-empty text to a tier label.
type Classifier interface {
	Predict(cleaned string) string
}

// Vectorizer is a fitted TF-IDF transform with a fixed vocabulary.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
}

// Predictor is a fitted linear multi-class model over the vectorizer's columns.
// A binary model carries one coefficient row; a positive score selects Classes[1].
type Predictor struct {
	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// LinearClassifier pairs a Vectorizer with a Predictor. It is immutable after
// construction and safe to share between goroutines.
type LinearClassifier struct {
	vectorizer Vectorizer
	predictor  Predictor
}

// LoadClassifier decodes JSON artifacts for the vectorizer and the predictor.
func LoadClassifier(vectorizer, predictor io.Reader) (*LinearClassifier, error) {
	var vec Vectorizer
	if err := json.NewDecoder(vectorizer).Decode(&vec); err != nil {
		return nil, fmt.Errorf("decode vectorizer artifact: %w", err)
	}
	var pred Predictor
	if err := json.NewDecoder(predictor).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decode predictor artifact: %w", err)
	}
	return NewLinearClassifier(vec, pred)
}

// NewLinearClassifier validates that the two artifacts agree on dimensions.
func NewLinearClassifier(vec Vectorizer, pred Predictor) (*LinearClassifier, error) {
	width := len(vec.IDF)
	if width == 0 {
		return nil, errors.New("vectorizer has an empty vocabulary")
	}
	if len(vec.Vocabulary) != width {
		return nil, fmt.Errorf("vectorizer vocabulary has %d terms but idf has %d weights", len(vec.Vocabulary), width)
	}
	for term, col := range vec.Vocabulary {
		if col < 0 || col >= width {
			return nil, fmt.Errorf("vocabulary term %q maps to column %d outside [0,%d)", term, col, width)
		}
	}
	switch vec.Norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("unsupported vectorizer norm %q", vec.Norm)
	}

	classes := len(pred.Classes)
	if classes < 2 {
		return nil, fmt.Errorf("predictor needs at least 2 classes, got %d", classes)
	}
	rows := len(pred.Coef)
	if rows != classes && !(classes == 2 && rows == 1) {
		return nil, fmt.Errorf("predictor has %d coefficient rows for %d classes", rows, classes)
	}
	if len(pred.Intercept) != rows {
		return nil, fmt.Errorf("predictor has %d intercepts for %d coefficient rows", len(pred.Intercept), rows)
	}
	for i, row := range pred.Coef {
		if len(row) != width {
			return nil, fmt.Errorf("coefficient row %d has width %d, vectorizer has %d", i, len(row), width)
		}
	}

	return &LinearClassifier{vectorizer: vec, predictor: pred}, nil
}

// Classes returns the labels the predictor can emit.
func (c *LinearClassifier) Classes() []string {
	out := make([]string, len(c.predictor.Classes))
	copy(out, c.predictor.Classes)
	return out
}

// Predict returns the highest scoring label for cleaned text.
func (c *LinearClassifier) Predict(cleaned string) string {
	features := c.vectorizer.transform(cleaned)
	pred := c.predictor

	if len(pred.Coef) == 1 {
		if score(pred.Coef[0], pred.Intercept[0], features) > 0 {
			return pred.Classes[1]
		}
		return pred.Classes[0]
	}

	best := 0
	bestScore := math.Inf(-1)
	for i, row := range pred.Coef {
		s := score(row, pred.Intercept[i], features)
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return pred.Classes[best]
}

func score(coef []float64, intercept float64, features map[int]float64) float64 {
	s := intercept
	for col, v := range features {
		s += coef[col] * v
	}
	return s
}

// transform builds the sparse TF-IDF vector for text. Tokens shorter than two
// characters are dropped and terms outside the vocabulary are ignored.
func (v *Vectorizer) transform(text string) map[int]float64 {
	counts := make(map[int]float64)
	for _, token := range strings.Fields(text) {
		if len(token) < 2 {
			continue
		}
		if col, ok := v.Vocabulary[token]; ok {
			counts[col]++
		}
	}

	var norm float64
	for col, tf := range counts {
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.IDF[col]
		counts[col] = w
		switch v.Norm {
		case "l2":
			norm += w * w
		case "l1":
			norm += math.Abs(w)
		}
	}
	if v.Norm == "l2" {
		norm = math.Sqrt(norm)
	}
	if norm > 0 {
		for col := range counts {
			counts[col] /= norm
		}
	}
	return counts
}
