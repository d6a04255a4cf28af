package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"editzen-backend/internal/models"
)

// APIError is a response the server answered with an error envelope or an
// unexpected status. Transport failures are returned as plain errors.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("editzen api: status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Chat sends the whole conversation and returns the assistant turn.
func (c *Client) Chat(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext) (*models.ChatMessage, error) {
	var reply models.ChatMessage
	if err := c.post(ctx, "/api/ai/chat", models.ChatRequest{Messages: messages, Context: chatCtx}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Analyze(ctx context.Context, imageURL string) (*models.ImageAnalysisResult, error) {
	var result models.ImageAnalysisResult
	if err := c.post(ctx, "/api/ai/analyze", models.AnalyzeRequest{ImageURL: imageURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Suggest(ctx context.Context, imageURL string, t models.SuggestionType) ([]models.PromptSuggestion, error) {
	var suggestions []models.PromptSuggestion
	req := models.SuggestRequest{ImageURL: imageURL, TransformationType: t}
	if err := c.post(ctx, "/api/ai/suggest", req, &suggestions); err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []models.PromptSuggestion{}
	}
	return suggestions, nil
}

// ChatStream sends one chat request over the streaming endpoint, handing
// each delta to onChunk, and returns the final assistant turn.
func (c *Client) ChatStream(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext, onChunk func(string)) (*models.ChatMessage, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/ai/chat/stream"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("failed to open chat stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(models.ChatRequest{Messages: messages, Context: chatCtx}); err != nil {
		return nil, fmt.Errorf("failed to send chat request: %w", err)
	}

	for {
		var frame models.StreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read chat stream: %w", err)
		}

		switch frame.Type {
		case models.FrameChunk:
			if onChunk != nil {
				onChunk(frame.Content)
			}
		case models.FrameDone:
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if frame.Data == nil {
				return nil, &APIError{Status: http.StatusOK, Message: "stream finished without a reply"}
			}
			return frame.Data, nil
		case models.FrameError:
			return nil, &APIError{Status: http.StatusOK, Message: frame.Error}
		}
	}
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope models.ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: envelope.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	envelope := models.SuccessResponse{Data: out}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response body"}
	}
	if !envelope.Success {
		return &APIError{Status: resp.StatusCode, Message: "response not marked successful"}
	}
	return nil
}
