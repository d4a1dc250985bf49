package repository

import (
	"context"
	"sync"

	"mindcare-go/internal/model"
)

// memoryChatRecordRepository keeps records in process memory. Used for local
// runs without MySQL and in tests.
type memoryChatRecordRepository struct {
	mu      sync.RWMutex
	nextID  uint
	records []model.ChatRecord
}

// NewMemoryChatRecordRepository creates an empty in-memory ChatRecordRepository.
func NewMemoryChatRecordRepository() ChatRecordRepository {
	return &memoryChatRecordRepository{}
}

// Create assigns the next ID and stores a copy of record.
func (r *memoryChatRecordRepository) Create(ctx context.Context, record *model.ChatRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// ids are never reused, even after Delete
	r.nextID++
	record.ID = r.nextID
	r.records = append(r.records, cloneRecord(*record))
	return nil
}

// FindByUserID returns copies of the user's records in insertion order.
func (r *memoryChatRecordRepository) FindByUserID(ctx context.Context, userID string) ([]model.ChatRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.ChatRecord{}
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// Delete removes the record with id and returns it, or ErrRecordNotFound.
func (r *memoryChatRecordRepository) Delete(ctx context.Context, id uint) (*model.ChatRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return &rec, nil
		}
	}
	return nil, ErrRecordNotFound
}

func cloneRecord(rec model.ChatRecord) model.ChatRecord {
	if rec.Suggestions != nil {
		s := make([]string, len(rec.Suggestions))
		copy(s, rec.Suggestions)
		rec.Suggestions = s
	}
	return rec
}
