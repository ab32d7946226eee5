package models

import "time"

// Message represents a message posted to a channel.
// A message is written once; deletion is its only mutation.
type Message struct {
	ID           string    `json:"id" db:"id"`
	ChannelID    string    `json:"channel_id" db:"channel_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Content      string    `json:"content" db:"content"`
	Timestamp    time.Time `json:"timestamp" db:"sent_at"`
	FileURL      *string   `json:"fileUrl" db:"file_url"`
	ThumbnailURL *string   `json:"thumbnailUrl" db:"thumbnail_url"`
	Version      int64     `json:"version" db:"version"`
}

// HasAttachment reports whether the message references an uploaded file
func (m *Message) HasAttachment() bool {
	return m.FileURL != nil
}
