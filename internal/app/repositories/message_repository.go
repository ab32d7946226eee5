package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/filechat/internal/app/models"
	"github.com/yigit/filechat/internal/pkg/apperrors"
	"github.com/yigit/filechat/internal/pkg/dberrors"
)

// pgxQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var messageColumns = []string{
	"id::text", "channel_id", "user_id", "content", "sent_at", "file_url", "thumbnail_url", "version",
}

// PostgresMessageRepository handles database operations for messages
type PostgresMessageRepository struct {
	db pgxQuerier
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db pgxQuerier) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Create inserts a new message into the database
func (r *PostgresMessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (
			channel_id, user_id, content, sent_at, file_url, thumbnail_url
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, version
	`

	err := r.db.QueryRow(ctx, query,
		message.ChannelID,
		message.UserID,
		message.Content,
		message.Timestamp,
		message.FileURL,
		message.ThumbnailURL,
	).Scan(&message.ID, &message.Version)
	if err != nil {
		if dberrors.IsConstraintViolation(err) {
			return apperrors.NewPersistenceError("message violates a store constraint", err)
		}
		return apperrors.NewPersistenceError("error creating message", err)
	}

	return nil
}

// buildListByChannelQuery selects a channel's messages in insertion order
func buildListByChannelQuery(channelID string) (string, []interface{}, error) {
	return squirrel.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"channel_id": channelID}).
		OrderBy("seq ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// ListByChannel retrieves the messages of a channel
func (r *PostgresMessageRepository) ListByChannel(ctx context.Context, channelID string) ([]*models.Message, error) {
	sql, args, err := buildListByChannelQuery(channelID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("error building SQL", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("error executing query", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("error scanning message row", err)
		}
		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("error iterating message rows", err)
	}

	return messages, nil
}

// GetByIDInChannel retrieves a message by its ID within a channel
func (r *PostgresMessageRepository) GetByIDInChannel(ctx context.Context, channelID, messageID string) (*models.Message, error) {
	// Ids that are not UUIDs cannot exist; asking Postgres would raise a cast error instead
	if _, err := uuid.Parse(messageID); err != nil {
		return nil, apperrors.ErrMessageNotFound
	}

	query := `
		SELECT id::text, channel_id, user_id, content, sent_at, file_url, thumbnail_url, version
		FROM messages
		WHERE id = $1 AND channel_id = $2
	`

	message, err := scanMessage(r.db.QueryRow(ctx, query, messageID, channelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, apperrors.NewPersistenceError("error retrieving message", err)
	}

	return message, nil
}

// DeleteByIDInChannel removes a message of a channel
func (r *PostgresMessageRepository) DeleteByIDInChannel(ctx context.Context, channelID, messageID string) (bool, error) {
	if _, err := uuid.Parse(messageID); err != nil {
		return false, nil
	}

	query := `DELETE FROM messages WHERE id = $1 AND channel_id = $2`

	result, err := r.db.Exec(ctx, query, messageID, channelID)
	if err != nil {
		return false, apperrors.NewPersistenceError("error deleting message", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var message models.Message
	err := row.Scan(
		&message.ID,
		&message.ChannelID,
		&message.UserID,
		&message.Content,
		&message.Timestamp,
		&message.FileURL,
		&message.ThumbnailURL,
		&message.Version,
	)
	if err != nil {
		return nil, err
	}
	message.Timestamp = message.Timestamp.UTC()
	return &message, nil
}
