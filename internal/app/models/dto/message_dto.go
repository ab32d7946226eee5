package dto

import (
	"time"

	"github.com/yigit/filechat/internal/app/models"
)

// --- Request DTOs ---

// SendMessageRequest is the multipart form of a send request. The file part is read separately.
type SendMessageRequest struct {
	Text string `form:"text" binding:"required"`
}

// --- Response DTOs ---

// MessageResponse is the canonical outward representation of a message.
// FileURL and ThumbnailURL are always serialised, as null when absent.
type MessageResponse struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	MessageID    string    `json:"message_id"`
	Timestamp    time.Time `json:"timestamp"`
	Version      int64     `json:"version"`
	FileURL      *string   `json:"fileUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
}

// MessageEnvelope wraps a single message
type MessageEnvelope struct {
	Success bool             `json:"success"`
	Message *MessageResponse `json:"message"`
}

// MessageListEnvelope wraps a channel's messages
type MessageListEnvelope struct {
	Success  bool              `json:"success"`
	Messages []MessageResponse `json:"messages"`
}

// SuccessResponse represents a payload-less success
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ToMessageResponse transforms a stored message into its canonical representation
func ToMessageResponse(message *models.Message) MessageResponse {
	return MessageResponse{
		ID:           message.ID,
		ChannelID:    message.ChannelID,
		UserID:       message.UserID,
		Content:      message.Content,
		MessageID:    message.ID,
		Timestamp:    message.Timestamp,
		Version:      message.Version,
		FileURL:      message.FileURL,
		ThumbnailURL: message.ThumbnailURL,
	}
}
