// Package service contains the business logic layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mindcare-go/internal/inference"
	"mindcare-go/internal/model"
	"mindcare-go/internal/repository"
	"mindcare-go/pkg/events"
	"mindcare-go/pkg/log"
)

// RecordEventPublisher forwards history changes to downstream consumers.
type RecordEventPublisher interface {
	Publish(ctx context.Context, event events.RecordEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.RecordEvent) error { return nil }

// NoopPublisher discards events. Used when Kafka is disabled.
var NoopPublisher RecordEventPublisher = noopPublisher{}

// HistoryService persists and reads chat records.
type HistoryService interface {
	// SaveRecord stores a precomputed result and returns the new record id.
	SaveRecord(ctx context.Context, userID, message, response, anxietyLevel string, suggestions []string) (string, error)
	// ListHistory returns the user's records. Store failures yield an empty list.
	ListHistory(ctx context.Context, userID string) []model.ChatRecord
	// DeleteRecord reports whether a record with id existed and was removed.
	DeleteRecord(ctx context.Context, id string) (bool, error)
	// GetInsights counts the user's records per tier.
	GetInsights(ctx context.Context, userID string) model.Insights
}

type historyService struct {
	repo      repository.ChatRecordRepository
	cache     repository.InsightsCache
	publisher RecordEventPublisher
	now       func() time.Time

	clockMu sync.Mutex
	last    time.Time
}

// HistoryOption customises a HistoryService.
type HistoryOption func(*historyService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) HistoryOption {
	return func(s *historyService) { s.now = now }
}

// NewHistoryService creates a HistoryService. cache and publisher may be nil.
func NewHistoryService(repo repository.ChatRecordRepository, cache repository.InsightsCache, publisher RecordEventPublisher, opts ...HistoryOption) HistoryService {
	if cache == nil {
		cache = repository.NewNoopInsightsCache()
	}
	if publisher == nil {
		publisher = NoopPublisher
	}
	s := &historyService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current UTC time, never earlier than a previously issued one.
func (s *historyService) timestamp() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	t := s.now().UTC()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

// SaveRecord writes even when ctx is cancelled; the caller going away does
// not undo a record it asked for.
func (s *historyService) SaveRecord(ctx context.Context, userID, message, response, anxietyLevel string, suggestions []string) (string, error) {
	ctx = context.WithoutCancel(ctx)
	if userID == "" {
		userID = model.DefaultUserID
	}
	if err := validateRecord(anxietyLevel, suggestions); err != nil {
		return "", err
	}

	stored := make([]string, len(suggestions))
	copy(stored, suggestions)
	record := &model.ChatRecord{
		UserID:       userID,
		Message:      message,
		Response:     response,
		AnxietyLevel: anxietyLevel,
		Suggestions:  stored,
		Timestamp:    s.timestamp(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return "", err
	}
	id := record.RecordID()
	log.Infow("chat record saved", "record_id", id, "user_id", userID, "anxiety_level", anxietyLevel)

	s.invalidateInsights(ctx, userID)
	topics := inference.ActiveTopics(inference.Normalize(message))
	s.publish(ctx, events.NewRecordCreated(record, topics))
	return id, nil
}

func validateRecord(anxietyLevel string, suggestions []string) error {
	switch anxietyLevel {
	case model.LowAnxiety, model.ModerateAnxiety, model.HighAnxiety:
	default:
		return fmt.Errorf("%w: unknown anxiety level %q", ErrInvalidInput, anxietyLevel)
	}
	if len(suggestions) > model.MaxSuggestions {
		return fmt.Errorf("%w: at most %d suggestions allowed, got %d", ErrInvalidInput, model.MaxSuggestions, len(suggestions))
	}
	seen := make(map[string]struct{}, len(suggestions))
	for _, s := range suggestions {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate suggestion %q", ErrInvalidInput, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// ListHistory logs and swallows store failures.
func (s *historyService) ListHistory(ctx context.Context, userID string) []model.ChatRecord {
	records, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		log.Errorw("failed to fetch history", "user_id", userID, "error", err)
		return []model.ChatRecord{}
	}
	if records == nil {
		records = []model.ChatRecord{}
	}
	return records
}

// DeleteRecord, like SaveRecord, ignores cancellation of ctx.
func (s *historyService) DeleteRecord(ctx context.Context, id string) (bool, error) {
	ctx = context.WithoutCancel(ctx)
	key, ok := model.ParseRecordID(id)
	if !ok {
		log.Debugf("delete: invalid record id format %q", id)
		return false, nil
	}

	record, err := s.repo.Delete(ctx, key)
	if errors.Is(err, repository.ErrRecordNotFound) {
		log.Debugf("delete: no record with id %s", id)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	log.Infow("chat record deleted", "record_id", id, "user_id", record.UserID)

	s.invalidateInsights(ctx, record.UserID)
	s.publish(ctx, events.NewRecordDeleted(record))
	return true, nil
}

// GetInsights serves the cached counts when they are current. A store read
// failure returns zero counts and leaves the cache untouched.
func (s *historyService) GetInsights(ctx context.Context, userID string) model.Insights {
	cached, version, err := s.cache.Get(ctx, userID)
	cacheable := err == nil
	if err != nil {
		log.Warnw("insights cache read failed", "user_id", userID, "error", err)
	}
	if cached != nil {
		return *cached
	}

	var insights model.Insights
	records, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		log.Errorw("failed to fetch history for insights", "user_id", userID, "error", err)
		return insights
	}
	for _, record := range records {
		insights.Add(record.AnxietyLevel)
	}

	if cacheable {
		if err := s.cache.Set(ctx, userID, version, insights); err != nil {
			log.Warnw("insights cache write failed", "user_id", userID, "error", err)
		}
	}
	return insights
}

func (s *historyService) invalidateInsights(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warnw("insights cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (s *historyService) publish(ctx context.Context, event events.RecordEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Errorw("failed to publish record event", "type", event.Type, "record_id", event.RecordID, "error", err)
	}
}
