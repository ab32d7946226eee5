package repositories

import (
	"context"
	"io"

	"github.com/dgraph-io/badger/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/filechat/internal/app/models"
)

// MessageRepository is the document store capability used by the message service.
// Every lookup is scoped by channel.
type MessageRepository interface {
	// Create stores a new message and fills in its ID and Version
	Create(ctx context.Context, message *models.Message) error
	// ListByChannel returns the channel's messages in insertion order; never nil
	ListByChannel(ctx context.Context, channelID string) ([]*models.Message, error)
	// GetByIDInChannel returns apperrors.ErrMessageNotFound when nothing matches
	GetByIDInChannel(ctx context.Context, channelID, messageID string) (*models.Message, error)
	// DeleteByIDInChannel reports whether a record was removed
	DeleteByIDInChannel(ctx context.Context, channelID, messageID string) (bool, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	MessageRepository MessageRepository
}

// NewPostgresRepositories initializes repositories on a Postgres pool
func NewPostgresRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		MessageRepository: NewPostgresMessageRepository(db),
	}
}

// NewBadgerRepositories initializes repositories on an embedded badger store
func NewBadgerRepositories(db *badger.DB) (*Repositories, error) {
	messageRepo, err := NewBadgerMessageRepository(db)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		MessageRepository: messageRepo,
	}, nil
}

// Close releases resources held by repositories, not the underlying database
func (r *Repositories) Close() error {
	if closer, ok := r.MessageRepository.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
