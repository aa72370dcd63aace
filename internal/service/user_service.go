package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SCGamer30/jam-match-sub001/internal/cache"
	"github.com/SCGamer30/jam-match-sub001/internal/middleware"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/repository"
)

// UserService manages musician profiles.
type UserService struct {
	userRepo  repository.UserRepository
	scoreRepo repository.ScoreRepository
}

func NewUserService(userRepo repository.UserRepository, scoreRepo repository.ScoreRepository) *UserService {
	return &UserService{userRepo: userRepo, scoreRepo: scoreRepo}
}

// ProfileInput carries the editable profile fields. Pointer fields distinguish
// "not provided" from "set to empty" on partial updates.
type ProfileInput struct {
	Name        *string                 `json:"name"`
	Bio         *string                 `json:"bio"`
	PrimaryRole *models.PrimaryRole     `json:"primary_role"`
	Instruments *models.StringList      `json:"instruments"`
	Genres      *models.StringList      `json:"genres"`
	Experience  *models.ExperienceLevel `json:"experience"`
	Location    *string                 `json:"location"`
	AvatarURL   *string                 `json:"avatar_url"`
}

// GetProfile returns the user's full profile.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// SetupProfile applies the initial full profile and marks it completed.
// All required fields must be present.
func (s *UserService) SetupProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfileInput(user, input)

	if err := user.ValidateProfile(); err != nil {
		return nil, err
	}
	user.ProfileCompleted = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateScores(ctx, userID)
	return user, nil
}

// UpdateProfile applies a partial update. Completion status is recomputed so
// a profile that loses required fields drops out of matching.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfileInput(user, input)

	if err := user.ValidateProfile(); err != nil {
		if user.ProfileCompleted {
			return nil, err
		}
		// An incomplete profile may stay incomplete; persist what we have.
	} else {
		user.ProfileCompleted = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateScores(ctx, userID)
	return user, nil
}

func applyProfileInput(user *models.User, input ProfileInput) {
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.PrimaryRole != nil {
		user.PrimaryRole = *input.PrimaryRole
	}
	if input.Instruments != nil {
		user.Instruments = *input.Instruments
	}
	if input.Genres != nil {
		user.Genres = *input.Genres
	}
	if input.Experience != nil {
		user.Experience = *input.Experience
	}
	if input.Location != nil {
		user.Location = strings.TrimSpace(*input.Location)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
}

// invalidateScores drops cached score entries for the user. Stored rows are
// refreshed on the next calculation pass.
func (s *UserService) invalidateScores(ctx context.Context, userID uint) {
	if err := cache.InvalidateUserScores(ctx, userID); err != nil {
		middleware.Logger.WarnContext(ctx, "score cache invalidation failed",
			slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
	}
}
