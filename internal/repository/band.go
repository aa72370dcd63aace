package repository

import (
	"context"
	"errors"

	"github.com/SCGamer30/jam-match-sub001/internal/models"

	"gorm.io/gorm"
)

// BandRepository defines the interface for band data operations
type BandRepository interface {
	Create(ctx context.Context, band *models.Band) error
	GetByID(ctx context.Context, id uint) (*models.Band, error)
	List(ctx context.Context, limit, offset int) ([]models.Band, error)
	GetForUser(ctx context.Context, userID uint) ([]models.Band, error)
	UpdateStatus(ctx context.Context, id uint, status models.BandStatus) error
	IsUserBanded(ctx context.Context, userID uint) (bool, error)
}

// bandRepository implements BandRepository
type bandRepository struct {
	db *gorm.DB
}

// NewBandRepository creates a new band repository
func NewBandRepository(db *gorm.DB) BandRepository {
	return &bandRepository{db: db}
}

func (r *bandRepository) Create(ctx context.Context, band *models.Band) error {
	if err := r.db.WithContext(ctx).Create(band).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bandRepository) GetByID(ctx context.Context, id uint) (*models.Band, error) {
	var band models.Band
	err := r.db.WithContext(ctx).
		Preload("Drummer").
		Preload("Guitarist").
		Preload("Bassist").
		Preload("Singer").
		First(&band, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Band", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &band, nil
}

func (r *bandRepository) List(ctx context.Context, limit, offset int) ([]models.Band, error) {
	var bands []models.Band
	err := r.db.WithContext(ctx).
		Preload("Drummer").
		Preload("Guitarist").
		Preload("Bassist").
		Preload("Singer").
		Order("formation_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&bands).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return bands, nil
}

// GetForUser returns the bands where the user occupies any slot.
func (r *bandRepository) GetForUser(ctx context.Context, userID uint) ([]models.Band, error) {
	var bands []models.Band
	err := r.db.WithContext(ctx).
		Where("drummer_id = ? OR guitarist_id = ? OR bassist_id = ? OR singer_id = ?",
			userID, userID, userID, userID).
		Preload("Drummer").
		Preload("Guitarist").
		Preload("Bassist").
		Preload("Singer").
		Order("formation_date DESC").
		Find(&bands).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return bands, nil
}

func (r *bandRepository) UpdateStatus(ctx context.Context, id uint, status models.BandStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Band{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Band", id)
	}
	return nil
}

// IsUserBanded reports whether the user already occupies a slot in an
// active band. Disbanded and inactive bands do not block re-matching.
func (r *bandRepository) IsUserBanded(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Band{}).
		Where("status = ?", models.BandStatusActive).
		Where("drummer_id = ? OR guitarist_id = ? OR bassist_id = ? OR singer_id = ?",
			userID, userID, userID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
