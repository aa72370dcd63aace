package repository

import (
	"context"
	"errors"

	"github.com/SCGamer30/jam-match-sub001/internal/models"

	"gorm.io/gorm"
)

// ScoreRepository defines the interface for compatibility score data operations
type ScoreRepository interface {
	Upsert(ctx context.Context, score *models.CompatibilityScore) error
	GetByPair(ctx context.Context, user1ID, user2ID uint) (*models.CompatibilityScore, error)
	GetForUser(ctx context.Context, userID uint, limit int) ([]models.CompatibilityScore, error)
	GetAll(ctx context.Context) ([]models.CompatibilityScore, error)
	DeleteForUser(ctx context.Context, userID uint) error
}

// scoreRepository implements ScoreRepository
type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository creates a new compatibility score repository
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

// Upsert creates the pair row or replaces its scoring columns when it exists.
func (r *scoreRepository) Upsert(ctx context.Context, score *models.CompatibilityScore) error {
	score.Normalize()

	var existing models.CompatibilityScore
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", score.User1ID, score.User2ID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.WithContext(ctx).Create(score).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}
	if err != nil {
		return models.NewInternalError(err)
	}

	score.ID = existing.ID
	score.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(score).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *scoreRepository) GetByPair(ctx context.Context, user1ID, user2ID uint) (*models.CompatibilityScore, error) {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}
	var score models.CompatibilityScore
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &score, nil
}

// GetForUser returns the user's scored pairs ordered best-first, with both
// profiles preloaded for match listings.
func (r *scoreRepository) GetForUser(ctx context.Context, userID uint, limit int) ([]models.CompatibilityScore, error) {
	var scores []models.CompatibilityScore
	q := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Preload("User1").
		Preload("User2").
		Order("final_score DESC, calculated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&scores).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return scores, nil
}

func (r *scoreRepository) GetAll(ctx context.Context) ([]models.CompatibilityScore, error) {
	var scores []models.CompatibilityScore
	if err := r.db.WithContext(ctx).Find(&scores).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return scores, nil
}

func (r *scoreRepository) DeleteForUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Delete(&models.CompatibilityScore{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
