package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/filechat/internal/app/models"
	"github.com/yigit/filechat/internal/pkg/apperrors"
	"github.com/yigit/filechat/internal/pkg/filestorage"
)

const testShareID = "jxnzhdehsvkhldxdburisb53ogca"

// memoryRepository is an in-memory MessageRepository
type memoryRepository struct {
	mu        sync.Mutex
	messages  []*models.Message
	nextID    int
	createErr error
}

func (r *memoryRepository) Create(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	message.ID = fmt.Sprintf("m%d", r.nextID)
	message.Version = 0
	stored := *message
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *memoryRepository) ListByChannel(_ context.Context, channelID string) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Message, 0)
	for _, m := range r.messages {
		if m.ChannelID == channelID {
			copied := *m
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memoryRepository) GetByIDInChannel(_ context.Context, channelID, messageID string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == messageID && m.ChannelID == channelID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, apperrors.ErrMessageNotFound
}

func (r *memoryRepository) DeleteByIDInChannel(_ context.Context, channelID, messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == messageID && m.ChannelID == channelID {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeUploader struct {
	calls       int
	key         string
	contentType string
	ctxErr      error
	err         error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, _ []byte, contentType string) error {
	u.calls++
	u.key = key
	u.contentType = contentType
	u.ctxErr = ctx.Err()
	return u.err
}

type serviceFixture struct {
	repo     *memoryRepository
	uploader *fakeUploader
	service  *messageServiceImpl
}

func newServiceFixture() *serviceFixture {
	repo := &memoryRepository{}
	uploader := &fakeUploader{}
	resolver := filestorage.NewURLResolver("link.storjshare.io", testShareID, "/vau7t/")
	service := NewMessageService(repo, uploader, resolver, time.Second, zerolog.Nop()).(*messageServiceImpl)
	service.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)) }
	return &serviceFixture{repo: repo, uploader: uploader, service: service}
}

func TestMessageService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("should send a text message without urls", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		message, err := f.service.SendMessage(ctx, "C1", "U1", "hello", nil)

		req.NoError(err)
		req.Equal("hello", message.Content)
		req.Equal("C1", message.ChannelID)
		req.Equal("U1", message.UserID)
		req.Equal(message.ID, message.MessageID)
		req.Zero(message.Version)
		req.Nil(message.FileURL)
		req.Nil(message.ThumbnailURL)
		req.Equal(time.UTC, message.Timestamp.Location())
		req.Zero(f.uploader.calls)
	})

	t.Run("should use the file url as thumbnail for images", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		message, err := f.service.SendMessage(ctx, "C1", "U1", "look", &Attachment{
			FileName:    "photo.png",
			ContentType: "image/png",
			Data:        []byte("png"),
		})

		req.NoError(err)
		req.Equal(1, f.uploader.calls)
		req.Equal("photo.png", f.uploader.key)
		req.NotNil(message.FileURL)
		req.Equal("https://link.storjshare.io/s/"+testShareID+"/vau7t/photo.png", *message.FileURL)
		req.NotNil(message.ThumbnailURL)
		req.Equal(*message.FileURL, *message.ThumbnailURL)
	})

	t.Run("should not set a thumbnail for documents", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		message, err := f.service.SendMessage(ctx, "C1", "U1", "report", &Attachment{
			FileName:    "doc.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.4"),
		})

		req.NoError(err)
		req.NotNil(message.FileURL)
		req.Equal("https://link.storjshare.io/s/"+testShareID+"/vau7t/doc.pdf", *message.FileURL)
		req.Nil(message.ThumbnailURL)
	})

	t.Run("should sniff a missing content type", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		message, err := f.service.SendMessage(ctx, "C1", "U1", "pic", &Attachment{
			FileName: "photo.png",
			Data:     []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
		})

		req.NoError(err)
		req.Equal("image/png", f.uploader.contentType)
		req.NotNil(message.ThumbnailURL)
	})

	t.Run("should reject blank content before uploading", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		_, err := f.service.SendMessage(ctx, "C1", "U1", "   ", &Attachment{
			FileName:    "photo.png",
			ContentType: "image/png",
			Data:        []byte("png"),
		})

		req.ErrorIs(err, apperrors.ErrValidationFailed)
		req.Zero(f.uploader.calls)
		req.Empty(f.repo.messages)
	})

	t.Run("should reject missing channel or user", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		_, err := f.service.SendMessage(ctx, "", "U1", "hello", nil)
		req.ErrorIs(err, apperrors.ErrValidationFailed)

		_, err = f.service.SendMessage(ctx, "C1", "", "hello", nil)
		req.ErrorIs(err, apperrors.ErrValidationFailed)

		req.Empty(f.repo.messages)
	})

	t.Run("should reject an unusable file name", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		_, err := f.service.SendMessage(ctx, "C1", "U1", "hello", &Attachment{FileName: "..", Data: []byte("x")})

		req.ErrorIs(err, apperrors.ErrValidationFailed)
		req.Zero(f.uploader.calls)
	})

	t.Run("should persist nothing when the upload fails", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()
		_, err := f.service.SendMessage(ctx, "C1", "U1", "first", nil)
		req.NoError(err)
		f.uploader.err = apperrors.NewUploadError("failed to upload attachment", errors.New("access denied"))

		_, err = f.service.SendMessage(ctx, "C1", "U1", "second", &Attachment{
			FileName:    "photo.png",
			ContentType: "image/png",
			Data:        []byte("png"),
		})

		req.ErrorIs(err, apperrors.ErrUpload)
		messages, err := f.service.ListMessages(ctx, "C1")
		req.NoError(err)
		req.Len(messages, 1)
	})

	t.Run("should surface persistence failures", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()
		f.repo.createErr = apperrors.NewPersistenceError("error creating message", errors.New("connection refused"))

		_, err := f.service.SendMessage(ctx, "C1", "U1", "hello", nil)

		req.ErrorIs(err, apperrors.ErrPersistence)
	})

	t.Run("should finish the upload after the client cancels", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := f.service.SendMessage(cancelled, "C1", "U1", "late", &Attachment{
			FileName:    "doc.pdf",
			ContentType: "application/pdf",
			Data:        []byte("pdf"),
		})

		req.NoError(err)
		req.NoError(f.uploader.ctxErr)
		req.Len(f.repo.messages, 1)
	})
}

func TestMessageService_ListMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("should return an empty list for an empty channel", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		messages, err := f.service.ListMessages(ctx, "C1")

		req.NoError(err)
		req.NotNil(messages)
		req.Empty(messages)
	})

	t.Run("should list in send order within the channel", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()
		for _, content := range []string{"one", "two", "three"} {
			_, err := f.service.SendMessage(ctx, "C1", "U1", content, nil)
			req.NoError(err)
		}
		_, err := f.service.SendMessage(ctx, "C2", "U1", "other", nil)
		req.NoError(err)

		messages, err := f.service.ListMessages(ctx, "C1")

		req.NoError(err)
		req.Len(messages, 3)
		req.Equal("one", messages[0].Content)
		req.Equal("three", messages[2].Content)
	})
}

func TestMessageService_GetAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("should return not found for an unknown message", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()

		_, err := f.service.GetMessage(ctx, "C1", "missing")
		req.ErrorIs(err, apperrors.ErrResourceNotFound)

		err = f.service.DeleteMessage(ctx, "C1", "missing")
		req.ErrorIs(err, apperrors.ErrResourceNotFound)
	})

	t.Run("should not find a deleted message", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()
		sent, err := f.service.SendMessage(ctx, "C1", "U1", "bye", nil)
		req.NoError(err)

		found, err := f.service.GetMessage(ctx, "C1", sent.ID)
		req.NoError(err)
		req.Equal(sent.ID, found.ID)

		req.NoError(f.service.DeleteMessage(ctx, "C1", sent.ID))

		_, err = f.service.GetMessage(ctx, "C1", sent.ID)
		req.ErrorIs(err, apperrors.ErrResourceNotFound)
	})

	t.Run("should scope lookups by channel", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture()
		sent, err := f.service.SendMessage(ctx, "C1", "U1", "mine", nil)
		req.NoError(err)

		_, err = f.service.GetMessage(ctx, "C2", sent.ID)
		req.ErrorIs(err, apperrors.ErrResourceNotFound)

		err = f.service.DeleteMessage(ctx, "C2", sent.ID)
		req.ErrorIs(err, apperrors.ErrResourceNotFound)

		_, err = f.service.GetMessage(ctx, "C1", sent.ID)
		req.NoError(err)
	})
}
