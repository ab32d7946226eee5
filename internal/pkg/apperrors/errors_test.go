package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomError_Kinds(t *testing.T) {
	t.Run("should match its kind and its cause", func(t *testing.T) {
		req := require.New(t)
		cause := errors.New("connection refused")

		err := NewUploadError("failed to upload attachment", cause)

		req.ErrorIs(err, ErrUpload)
		req.ErrorIs(err, cause)
		req.NotErrorIs(err, ErrPersistence)
		req.Equal("failed to upload attachment: connection refused", err.Error())
	})

	t.Run("should keep the cause out of the public message", func(t *testing.T) {
		req := require.New(t)

		err := NewPersistenceError("failed to store message", errors.New("dial tcp 10.0.0.1:5432"))

		req.Equal("failed to store message", PublicMessage(err, "fallback"))
	})

	t.Run("should survive fmt wrapping", func(t *testing.T) {
		req := require.New(t)

		err := fmt.Errorf("send: %w", ErrMessageNotFound)

		req.ErrorIs(err, ErrMessageNotFound)
		req.ErrorIs(err, ErrResourceNotFound)
		req.Equal("Message not found", PublicMessage(err, "fallback"))
	})

	t.Run("should treat a too large file as an upload failure", func(t *testing.T) {
		req := require.New(t)

		req.ErrorIs(ErrFileTooLarge, ErrUpload)
	})

	t.Run("should fall back for plain errors", func(t *testing.T) {
		req := require.New(t)

		req.Equal("fallback", PublicMessage(errors.New("boom"), "fallback"))
	})
}

func TestIs(t *testing.T) {
	req := require.New(t)
	err := NewValidationError("Text is required")

	req.True(Is(err, ErrUpload, ErrValidationFailed))
	req.False(Is(err, ErrUpload, ErrPersistence))
}
