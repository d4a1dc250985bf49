package service

import (
	"context"
	"errors"

	"mindcare-go/internal/inference"
	"mindcare-go/internal/model"
	"mindcare-go/pkg/log"
)

var (
	// ErrModelUnavailable means the classifier artifacts failed to load at startup.
	ErrModelUnavailable = errors.New("model not loaded")
	// ErrInvalidInput means the request cannot be processed as given.
	ErrInvalidInput = errors.New("input text is empty or invalid")
)

// AnalysisService runs the inference pipeline on one statement.
type AnalysisService interface {
	Analyze(ctx context.Context, text, userID string) (*model.Analysis, error)
	// ModelReady reports whether the classifier loaded.
	ModelReady() bool
}

type analysisService struct {
	classifier inference.Classifier
	composer   *inference.SuggestionComposer
	empathy    *inference.EmpathySelector
	history    HistoryService
}

// NewAnalysisService creates an AnalysisService. A nil classifier leaves the
// service permanently unavailable for statements that pass the safety check.
func NewAnalysisService(classifier inference.Classifier, chooser inference.Chooser, history HistoryService) AnalysisService {
	if chooser == nil {
		chooser = inference.NewRandomChooser()
	}
	return &analysisService{
		classifier: classifier,
		composer:   inference.NewSuggestionComposer(chooser),
		empathy:    inference.NewEmpathySelector(chooser),
		history:    history,
	}
}

func (s *analysisService) ModelReady() bool {
	return s.classifier != nil
}

// Analyze screens text for crisis language, classifies it and composes the
// response, then records the interaction. A failed write is logged and does
// not fail the call.
func (s *analysisService) Analyze(ctx context.Context, text, userID string) (*model.Analysis, error) {
	if userID == "" {
		userID = model.DefaultUserID
	}

	if inference.IsHarmful(text) {
		log.Warnw("crisis language detected, skipping classifier", "user_id", userID)
		analysis := inference.CrisisAnalysis()
		s.autosave(ctx, userID, text, &analysis)
		return &analysis, nil
	}

	if s.classifier == nil {
		return nil, ErrModelUnavailable
	}

	cleaned := inference.Normalize(text)
	if cleaned == "" {
		return nil, ErrInvalidInput
	}

	label := s.classifier.Predict(cleaned)
	analysis := model.Analysis{
		AnxietyLevel: label,
		Explanation:  inference.Explain(label, s.empathy.Phrase(label)),
		Suggestions:  s.composer.Compose(label, cleaned),
	}
	s.autosave(ctx, userID, text, &analysis)
	return &analysis, nil
}

func (s *analysisService) autosave(ctx context.Context, userID, text string, analysis *model.Analysis) {
	_, err := s.history.SaveRecord(context.WithoutCancel(ctx), userID, text, analysis.Explanation, analysis.AnxietyLevel, analysis.Suggestions)
	if err != nil {
		log.Errorw("error autosaving chat", "user_id", userID, "error", err)
	}
}
