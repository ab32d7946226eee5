package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/yigit/filechat/internal/app/models"
	"github.com/yigit/filechat/internal/pkg/apperrors"
)

const (
	messageKeyPrefix  = "msg/"
	indexKeyPrefix    = "idx/"
	sequenceKey       = "seq/messages"
	sequenceBandwidth = 100
	maxTxnRetries     = 3
)

// BadgerMessageRepository stores messages in an embedded badger database.
//
// Records live under "msg/{channel}\x00{seq}" where seq is a zero padded badger sequence,
// so a prefix scan returns a channel's messages in insertion order. "idx/{id}" points
// at the record key for lookups by id.
type BadgerMessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// diskMessage is the stored form of a message
type diskMessage struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	FileURL      *string   `json:"file_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Version      int64     `json:"version"`
}

// NewBadgerMessageRepository creates a BadgerMessageRepository. Close releases its sequence.
func NewBadgerMessageRepository(db *badger.DB) (*BadgerMessageRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("error acquiring message sequence: %w", err)
	}
	return &BadgerMessageRepository{db: db, seq: seq}, nil
}

// Close returns unused sequence numbers to the store
func (r *BadgerMessageRepository) Close() error {
	return r.seq.Release()
}

func channelPrefix(channelID string) []byte {
	return []byte(messageKeyPrefix + channelID + "\x00")
}

func recordKey(channelID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s\x00%019d", messageKeyPrefix, channelID, seq))
}

func indexKey(messageID string) []byte {
	return []byte(indexKeyPrefix + messageID)
}

// Create stores a new message
func (r *BadgerMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewPersistenceError("error creating message", err)
	}

	seq, err := r.seq.Next()
	if err != nil {
		return apperrors.NewPersistenceError("error allocating message sequence", err)
	}

	stored := diskMessage{
		ID:           uuid.NewString(),
		ChannelID:    message.ChannelID,
		UserID:       message.UserID,
		Content:      message.Content,
		Timestamp:    message.Timestamp.UTC(),
		FileURL:      message.FileURL,
		ThumbnailURL: message.ThumbnailURL,
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return apperrors.NewPersistenceError("error encoding message", err)
	}

	key := recordKey(message.ChannelID, seq)
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, payload); err != nil {
			return err
		}
		return txn.Set(indexKey(stored.ID), key)
	})
	if err != nil {
		return apperrors.NewPersistenceError("error creating message", err)
	}

	message.ID = stored.ID
	message.Version = stored.Version
	message.Timestamp = stored.Timestamp
	return nil
}

// ListByChannel retrieves the messages of a channel in insertion order
func (r *BadgerMessageRepository) ListByChannel(ctx context.Context, channelID string) ([]*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("error listing messages", err)
	}

	messages := make([]*models.Message, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := channelPrefix(channelID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			message, err := decodeMessage(value)
			if err != nil {
				return err
			}
			// Channel ids may themselves contain the separator
			if message.ChannelID != channelID {
				continue
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError("error listing messages", err)
	}

	return messages, nil
}

// GetByIDInChannel retrieves a message by its ID within a channel
func (r *BadgerMessageRepository) GetByIDInChannel(ctx context.Context, channelID, messageID string) (*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("error retrieving message", err)
	}

	var message *models.Message
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		message, _, err = lookup(txn, channelID, messageID)
		return err
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError("error retrieving message", err)
	}
	if message == nil {
		return nil, apperrors.ErrMessageNotFound
	}

	return message, nil
}

// DeleteByIDInChannel removes a message of a channel
func (r *BadgerMessageRepository) DeleteByIDInChannel(ctx context.Context, channelID, messageID string) (bool, error) {
	var deleted bool
	var err error

	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			break
		}
		deleted = false
		err = r.db.Update(func(txn *badger.Txn) error {
			message, key, err := lookup(txn, channelID, messageID)
			if err != nil || message == nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete(indexKey(messageID)); err != nil {
				return err
			}
			deleted = true
			return nil
		})
		// A concurrent delete of the same message commits first; the retry then sees nothing
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return false, apperrors.NewPersistenceError("error deleting message", err)
	}

	return deleted, nil
}

// lookup resolves a message id within a channel. A nil message means no match.
func lookup(txn *badger.Txn, channelID, messageID string) (*models.Message, []byte, error) {
	item, err := txn.Get(indexKey(messageID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	key, err := item.ValueCopy(nil)
	if err != nil {
		return nil, nil, err
	}

	item, err = txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, nil, err
	}

	message, err := decodeMessage(value)
	if err != nil {
		return nil, nil, err
	}
	if message.ChannelID != channelID {
		return nil, nil, nil
	}
	return message, key, nil
}

func decodeMessage(value []byte) (*models.Message, error) {
	var stored diskMessage
	if err := json.Unmarshal(value, &stored); err != nil {
		return nil, fmt.Errorf("error decoding message: %w", err)
	}
	return &models.Message{
		ID:           stored.ID,
		ChannelID:    stored.ChannelID,
		UserID:       stored.UserID,
		Content:      stored.Content,
		Timestamp:    stored.Timestamp,
		FileURL:      stored.FileURL,
		ThumbnailURL: stored.ThumbnailURL,
		Version:      stored.Version,
	}, nil
}
