package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"editzen-backend/internal/middleware"
	"editzen-backend/internal/models"
	"editzen-backend/internal/services"
	"editzen-backend/internal/websocket"
)

type chatStreamer interface {
	StreamChat(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext, onChunk func(string) error) (string, error)
}

// ChatStreamHandler serves streamed chat replies over a websocket. Each
// text frame from the client is one chat request; requests on a connection
// are handled one at a time.
type ChatStreamHandler struct {
	ai     chatStreamer
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewChatStreamHandler(ai chatStreamer, hub *websocket.Hub, logger *zap.Logger) *ChatStreamHandler {
	return &ChatStreamHandler{ai: ai, hub: hub, logger: logger}
}

func (h *ChatStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.hub.Accept(w, r)
	if err != nil {
		return
	}
	defer conn.Close()

	logger := h.logger.With(
		zap.String("conn_id", conn.ID.String()),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
	)

	for {
		body, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrClosed) {
				logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		if err := h.serveOne(r.Context(), conn, body, logger); err != nil {
			logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

// serveOne handles a single request frame. It only returns an error when
// the connection can no longer be written to.
func (h *ChatStreamHandler) serveOne(ctx context.Context, conn *websocket.Conn, body []byte, logger *zap.Logger) error {
	req, err := decodeChatRequest(body)
	if err != nil {
		return conn.WriteJSON(streamError(err, logger))
	}

	var writeErr error
	reply, err := h.ai.StreamChat(ctx, req.Messages, req.Context, func(chunk string) error {
		writeErr = conn.WriteJSON(models.StreamFrame{Type: models.FrameChunk, Content: chunk})
		return writeErr
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return conn.WriteJSON(streamError(err, logger))
	}

	msg := models.NewAssistantMessage(reply)
	return conn.WriteJSON(models.StreamFrame{Type: models.FrameDone, Data: &msg})
}

func streamError(err error, logger *zap.Logger) models.StreamFrame {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return models.StreamFrame{Type: models.FrameError, Error: validationErr.Message}
	}
	logger.Error(msgChatFailed, zap.Error(err))
	return models.StreamFrame{Type: models.FrameError, Error: msgChatFailed}
}
