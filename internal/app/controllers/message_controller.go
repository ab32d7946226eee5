package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/yigit/filechat/internal/app/models/dto"
	"github.com/yigit/filechat/internal/app/services"
	"github.com/yigit/filechat/internal/middleware"
	"github.com/yigit/filechat/internal/pkg/apperrors"
)

// formOverhead bounds the non-file parts of a send request
const formOverhead = 1 << 20

// MessageController handles channel message operations
type MessageController struct {
	messageService services.MessageService
	maxFileSize    int64
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController. Attachments larger than
// maxFileSize are rejected while the request is parsed.
func NewMessageController(messageService services.MessageService, maxFileSize int64, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		maxFileSize:    maxFileSize,
		logger:         logger,
	}
}

// GetMessages godoc
// @Summary List channel messages
// @Description Retrieve all messages of a channel in the order they were sent
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param channelId path string true "Channel ID"
// @Success 200 {object} dto.MessageListEnvelope
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /message/channel/{channelId}/messages [get]
func (c *MessageController) GetMessages(ctx *gin.Context) {
	messages, err := c.messageService.ListMessages(ctx.Request.Context(), ctx.Param("channelId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageListEnvelope{
		Success:  true,
		Messages: messages,
	})
}

// SendMessage godoc
// @Summary Send a message to a channel
// @Description Send a text message with an optional single file attachment
// @Tags messages
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param channelId path string true "Channel ID"
// @Param text formData string true "Message text"
// @Param file formData file false "Attachment"
// @Success 201 {object} dto.MessageEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /message/channel/{channelId}/send [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	channelID := ctx.Param("channelId")

	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxFileSize+formOverhead)

	var request dto.SendMessageRequest
	if err := ctx.ShouldBind(&request); err != nil {
		c.logger.Debug().Err(err).Str("channelID", channelID).Msg("Invalid send request")
		middleware.HandleAPIError(ctx, bindingError(err))
		return
	}

	attachment, err := c.readAttachment(ctx)
	if err != nil {
		c.logger.Error().Err(err).Str("channelID", channelID).Msg("Failed to read uploaded file")
		middleware.HandleAPIError(ctx, err)
		return
	}

	message, err := c.messageService.SendMessage(ctx.Request.Context(), channelID, userID, request.Text, attachment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.MessageEnvelope{
		Success: true,
		Message: message,
	})
}

// GetMessage godoc
// @Summary Get a message
// @Description Retrieve a single message of a channel
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param channelId path string true "Channel ID"
// @Param messageId path string true "Message ID"
// @Success 200 {object} dto.MessageEnvelope
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /message/channel/{channelId}/message/{messageId} [get]
func (c *MessageController) GetMessage(ctx *gin.Context) {
	message, err := c.messageService.GetMessage(ctx.Request.Context(), ctx.Param("channelId"), ctx.Param("messageId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageEnvelope{
		Success: true,
		Message: message,
	})
}

// DeleteMessage godoc
// @Summary Delete a message
// @Description Delete a message of a channel. The attachment blob is kept.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param channelId path string true "Channel ID"
// @Param messageId path string true "Message ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /message/channel/{channelId}/message/{messageId} [delete]
func (c *MessageController) DeleteMessage(ctx *gin.Context) {
	if err := c.messageService.DeleteMessage(ctx.Request.Context(), ctx.Param("channelId"), ctx.Param("messageId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Message deleted successfully",
	})
}

// bindingError turns a form binding failure into a validation error naming the first bad field
func bindingError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.ErrFileTooLarge
	}

	validationErr := &apperrors.CustomError{
		Err:     apperrors.ErrValidationFailed,
		Message: "Text and channel ID are required",
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		validationErr = validationErr.WithDetails(map[string]interface{}{
			"field": strings.ToLower(fieldErrs[0].Field()),
		})
	}
	return validationErr
}

// readAttachment returns the uploaded "file" part, or nil when the request carries none
func (c *MessageController) readAttachment(ctx *gin.Context) (*services.Attachment, error) {
	header, err := ctx.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid file upload")
	}
	if header.Size > c.maxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}

	data, err := readFileHeader(header)
	if err != nil {
		return nil, apperrors.NewUploadError("failed to read uploaded file", err)
	}

	return &services.Attachment{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
