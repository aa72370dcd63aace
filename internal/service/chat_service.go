package service

import (
	"context"
	"strings"

	"github.com/SCGamer30/jam-match-sub001/internal/middleware"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/repository"
)

const maxMessageLength = 2000

// ChatService handles band chat messages with membership authorization.
type ChatService struct {
	bandRepo repository.BandRepository
	msgRepo  repository.MessageRepository
}

func NewChatService(bandRepo repository.BandRepository, msgRepo repository.MessageRepository) *ChatService {
	return &ChatService{bandRepo: bandRepo, msgRepo: msgRepo}
}

// requireMember loads the band and checks the caller belongs to it.
func (s *ChatService) requireMember(ctx context.Context, userID, bandID uint) (*models.Band, error) {
	band, err := s.bandRepo.GetByID(ctx, bandID)
	if err != nil {
		return nil, err
	}
	if !band.HasMember(userID) {
		return nil, models.NewNotFoundError("Band", bandID)
	}
	return band, nil
}

// Messages returns a band's chat history newest-first, with the total count
// for pagination.
func (s *ChatService) Messages(ctx context.Context, userID, bandID uint, limit, offset int) ([]models.Message, int64, error) {
	if _, err := s.requireMember(ctx, userID, bandID); err != nil {
		return nil, 0, err
	}

	messages, err := s.msgRepo.GetForBand(ctx, bandID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.msgRepo.CountForBand(ctx, bandID)
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// Send stores a text message in the band chat.
func (s *ChatService) Send(ctx context.Context, userID, bandID uint, content string) (*models.Message, error) {
	if _, err := s.requireMember(ctx, userID, bandID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Message content cannot be empty")
	}
	if len(content) > maxMessageLength {
		return nil, models.NewValidationError("Message content exceeds 2000 characters")
	}

	msg := &models.Message{
		BandID:      bandID,
		UserID:      &userID,
		Content:     content,
		MessageType: models.MessageTypeText,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	middleware.ChatMessages.WithLabelValues(string(models.MessageTypeText)).Inc()
	return msg, nil
}
