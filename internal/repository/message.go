package repository

import (
	"context"

	"github.com/SCGamer30/jam-match-sub001/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for chat message data operations
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetForBand(ctx context.Context, bandID uint, limit, offset int) ([]models.Message, error)
	CountForBand(ctx context.Context, bandID uint) (int64, error)
}

// messageRepository implements MessageRepository
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetForBand returns messages newest-first so clients can page backwards
// through history.
func (r *messageRepository) GetForBand(ctx context.Context, bandID uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("band_id = ?", bandID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) CountForBand(ctx context.Context, bandID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("band_id = ?", bandID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
