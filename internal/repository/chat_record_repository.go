// Package repository provides the data access layer.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mindcare-go/internal/model"
)

// ErrRecordNotFound is returned when a chat record id does not exist.
var ErrRecordNotFound = errors.New("chat record not found")

// ChatRecordRepository is the append-only history store. Records are created
// once, scanned per user and removed only by Delete.
type ChatRecordRepository interface {
	// Create assigns record.ID and persists the record.
	Create(ctx context.Context, record *model.ChatRecord) error
	// FindByUserID returns the user's records in insertion order.
	FindByUserID(ctx context.Context, userID string) ([]model.ChatRecord, error)
	// Delete removes the record and returns it, or ErrRecordNotFound.
	Delete(ctx context.Context, id uint) (*model.ChatRecord, error)
}

type gormChatRecordRepository struct {
	db *gorm.DB
}

// NewChatRecordRepository creates a MySQL-backed ChatRecordRepository.
func NewChatRecordRepository(db *gorm.DB) ChatRecordRepository {
	return &gormChatRecordRepository{db: db}
}

// Create inserts record and fills in its ID.
func (r *gormChatRecordRepository) Create(ctx context.Context, record *model.ChatRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert chat record: %w", err)
	}
	return nil
}

// FindByUserID returns the user's records in id order.
func (r *gormChatRecordRepository) FindByUserID(ctx context.Context, userID string) ([]model.ChatRecord, error) {
	var records []model.ChatRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find chat records for user %q: %w", userID, err)
	}
	return records, nil
}

// Delete removes the record with id and returns it, or ErrRecordNotFound.
func (r *gormChatRecordRepository) Delete(ctx context.Context, id uint) (*model.ChatRecord, error) {
	var record model.ChatRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		res := tx.Delete(&model.ChatRecord{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// a concurrent delete won
			return ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("delete chat record %d: %w", id, err)
	}
	return &record, nil
}
