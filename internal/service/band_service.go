package service

import (
	"context"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/repository"
)

// BandService exposes band listings and details.
type BandService struct {
	bandRepo  repository.BandRepository
	scoreRepo repository.ScoreRepository
}

func NewBandService(bandRepo repository.BandRepository, scoreRepo repository.ScoreRepository) *BandService {
	return &BandService{bandRepo: bandRepo, scoreRepo: scoreRepo}
}

// BandMember is a member profile annotated with the slot they fill.
// Score is the caller's pairwise compatibility with this member, when one
// has been calculated.
type BandMember struct {
	Role  string                     `json:"role"`
	User  *models.User               `json:"user"`
	Score *models.CompatibilityScore `json:"score,omitempty"`
}

// BandsForUser returns every band the user belongs to, newest first.
func (s *BandService) BandsForUser(ctx context.Context, userID uint) ([]models.Band, error) {
	return s.bandRepo.GetForUser(ctx, userID)
}

// GetBand returns a single band. Non-members get a not found error rather
// than leaking band existence.
func (s *BandService) GetBand(ctx context.Context, userID, bandID uint) (*models.Band, error) {
	band, err := s.bandRepo.GetByID(ctx, bandID)
	if err != nil {
		return nil, err
	}
	if !band.HasMember(userID) {
		return nil, models.NewNotFoundError("Band", bandID)
	}
	return band, nil
}

// Members returns the band's roster with role labels, plus the caller's
// pairwise compatibility with each bandmate.
func (s *BandService) Members(ctx context.Context, userID, bandID uint) ([]BandMember, error) {
	band, err := s.GetBand(ctx, userID, bandID)
	if err != nil {
		return nil, err
	}

	members := []BandMember{
		{Role: string(models.RoleDrummer), User: band.Drummer},
		{Role: string(models.RoleGuitarist), User: band.Guitarist},
		{Role: string(models.RoleBassist), User: band.Bassist},
		{Role: string(models.RoleSinger), User: band.Singer},
	}
	for i := range members {
		member := members[i].User
		if member == nil || member.ID == userID {
			continue
		}
		score, err := s.scoreRepo.GetByPair(ctx, userID, member.ID)
		if err != nil {
			return nil, err
		}
		members[i].Score = score
	}
	return members, nil
}
