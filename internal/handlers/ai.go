package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"editzen-backend/internal/models"
	"editzen-backend/internal/services"
)

const maxRequestBytes = 1 << 20

const (
	msgChatFailed    = "Failed to get chat response"
	msgAnalyzeFailed = "Failed to analyze image"
	msgSuggestFailed = "Failed to generate suggestions"
)

type aiService interface {
	ChatWithAssistant(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext) (string, error)
	AnalyzeImage(ctx context.Context, imageURL string) (*models.ImageAnalysisResult, error)
	SuggestPrompts(ctx context.Context, imageURL string, t models.SuggestionType) ([]models.PromptSuggestion, error)
}

type AIHandler struct {
	ai     aiService
	logger *zap.Logger
}

func NewAIHandler(ai aiService, logger *zap.Logger) *AIHandler {
	return &AIHandler{ai: ai, logger: logger}
}

// Chat answers the last user message of the posted conversation.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := decodeChatRequest(body)
	if err != nil {
		handleServiceError(w, r, h.logger, err, msgChatFailed)
		return
	}

	reply, err := h.ai.ChatWithAssistant(r.Context(), req.Messages, req.Context)
	if err != nil {
		handleServiceError(w, r, h.logger, err, msgChatFailed)
		return
	}

	writeSuccess(w, models.NewAssistantMessage(reply))
}

func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "Image URL is required")
		return
	}

	analysis, err := h.ai.AnalyzeImage(r.Context(), req.ImageURL)
	if err != nil {
		handleServiceError(w, r, h.logger, err, msgAnalyzeFailed)
		return
	}

	writeSuccess(w, analysis)
}

func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "Image URL is required")
		return
	}
	if !req.TransformationType.Valid() {
		writeError(w, http.StatusBadRequest, "Valid transformation type (remove/recolor) is required")
		return
	}

	suggestions, err := h.ai.SuggestPrompts(r.Context(), req.ImageURL, req.TransformationType)
	if err != nil {
		handleServiceError(w, r, h.logger, err, msgSuggestFailed)
		return
	}

	writeSuccess(w, suggestions)
}

// decodeChatRequest parses and validates a chat payload. All failures are
// *services.ValidationError.
func decodeChatRequest(body []byte) (*models.ChatRequest, error) {
	var raw struct {
		Messages json.RawMessage     `json:"messages"`
		Context  *models.ChatContext `json:"context"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &services.ValidationError{Message: "Invalid request body"}
	}

	trimmed := strings.TrimSpace(string(raw.Messages))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, &services.ValidationError{Message: "Messages array is required"}
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(raw.Messages, &messages); err != nil {
		return nil, &services.ValidationError{Message: "Invalid request body"}
	}
	if len(messages) == 0 {
		return nil, &services.ValidationError{Message: "Messages array is required"}
	}

	for _, m := range messages {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			return nil, &services.ValidationError{Message: "Invalid message role"}
		}
	}

	return &models.ChatRequest{Messages: messages, Context: raw.Context}, nil
}
