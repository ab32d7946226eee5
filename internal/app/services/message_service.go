package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yigit/filechat/internal/app/models"
	"github.com/yigit/filechat/internal/app/models/dto"
	"github.com/yigit/filechat/internal/app/repositories"
	"github.com/yigit/filechat/internal/pkg/apperrors"
	"github.com/yigit/filechat/internal/pkg/filestorage"
)

// Attachment is a single file sent along with a message
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// MessageService defines the interface for message operations
type MessageService interface {
	SendMessage(ctx context.Context, channelID, userID, content string, attachment *Attachment) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, channelID string) ([]dto.MessageResponse, error)
	GetMessage(ctx context.Context, channelID, messageID string) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	messageRepo   repositories.MessageRepository
	uploader      filestorage.Uploader
	resolver      filestorage.Resolver
	uploadTimeout time.Duration
	now           func() time.Time
	logger        zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo repositories.MessageRepository,
	uploader filestorage.Uploader,
	resolver filestorage.Resolver,
	uploadTimeout time.Duration,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messageRepo:   messageRepo,
		uploader:      uploader,
		resolver:      resolver,
		uploadTimeout: uploadTimeout,
		now:           time.Now,
		logger:        logger,
	}
}

// SendMessage validates, uploads the attachment if any, then persists the message.
// Nothing is persisted when the upload fails.
func (s *messageServiceImpl) SendMessage(
	ctx context.Context,
	channelID, userID, content string,
	attachment *Attachment,
) (*dto.MessageResponse, error) {
	log := s.logger.With().
		Str("operation", "send").
		Str("channelID", channelID).
		Str("userID", userID).
		Logger()

	if err := validateSend(channelID, userID, content, attachment); err != nil {
		log.Warn().Err(err).Msg("Rejected message")
		return nil, err
	}

	// Once accepted a send is not abandoned half way because the client went away
	ctx, cancel := s.detach(ctx)
	defer cancel()

	message := &models.Message{
		ChannelID: channelID,
		UserID:    userID,
		Content:   content,
	}

	if attachment == nil {
		log.Debug().Msg("No file uploaded")
	} else {
		key := filestorage.ObjectKey(attachment.FileName)
		contentType := filestorage.DetectContentType(attachment.ContentType, attachment.Data)

		if err := s.uploader.Upload(ctx, key, attachment.Data, contentType); err != nil {
			log.Error().Err(err).
				Str("key", key).
				Int("size", len(attachment.Data)).
				Msg("Failed to upload attachment")
			return nil, err
		}

		fileURL, thumbnailURL := s.resolver.Resolve(attachment.FileName, contentType)
		message.FileURL = &fileURL
		message.ThumbnailURL = thumbnailURL
	}

	message.Timestamp = s.now().UTC()

	if err := s.messageRepo.Create(ctx, message); err != nil {
		log.Error().Err(err).Bool("hasAttachment", message.HasAttachment()).Msg("Failed to store message")
		return nil, err
	}

	log.Info().Str("messageID", message.ID).Bool("hasAttachment", message.HasAttachment()).Msg("Message sent")

	response := dto.ToMessageResponse(message)
	return &response, nil
}

// ListMessages retrieves the messages of a channel in chronological order
func (s *messageServiceImpl) ListMessages(ctx context.Context, channelID string) ([]dto.MessageResponse, error) {
	s.logger.Debug().
		Str("operation", "list").
		Str("channelID", channelID).
		Msg("Retrieving channel messages")

	messages, err := s.messageRepo.ListByChannel(ctx, channelID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("operation", "list").
			Str("channelID", channelID).
			Msg("Failed to retrieve channel messages")
		return nil, err
	}

	return lo.Map(messages, func(message *models.Message, _ int) dto.MessageResponse {
		return dto.ToMessageResponse(message)
	}), nil
}

// GetMessage retrieves a single message of a channel
func (s *messageServiceImpl) GetMessage(ctx context.Context, channelID, messageID string) (*dto.MessageResponse, error) {
	message, err := s.messageRepo.GetByIDInChannel(ctx, channelID, messageID)
	if err != nil {
		event := s.logger.Error()
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			event = s.logger.Debug()
		}
		event.Err(err).
			Str("operation", "get").
			Str("channelID", channelID).
			Str("messageID", messageID).
			Msg("Failed to retrieve message")
		return nil, err
	}

	response := dto.ToMessageResponse(message)
	return &response, nil
}

// DeleteMessage removes a message from its channel. Any uploaded blob is left in place.
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	log := s.logger.With().
		Str("operation", "delete").
		Str("channelID", channelID).
		Str("messageID", messageID).
		Logger()

	deleted, err := s.messageRepo.DeleteByIDInChannel(ctx, channelID, messageID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete message")
		return err
	}
	if !deleted {
		log.Debug().Msg("Message to delete not found")
		return apperrors.ErrMessageNotFound
	}

	log.Info().Msg("Message deleted")
	return nil
}

// detach keeps request values but drops client cancellation, bounded by the upload timeout
func (s *messageServiceImpl) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.uploadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.uploadTimeout)
}

func validateSend(channelID, userID, content string, attachment *Attachment) error {
	if strings.TrimSpace(channelID) == "" {
		return apperrors.NewValidationError("Text and channel ID are required")
	}
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewValidationError("User ID is required")
	}
	if strings.TrimSpace(content) == "" {
		return apperrors.NewValidationError("Text and channel ID are required")
	}
	if attachment != nil && filestorage.ObjectKey(attachment.FileName) == "" {
		return apperrors.NewValidationError("Attachment file name is invalid")
	}
	return nil
}
