package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"editzen-backend/internal/models"
)

const (
	opAnalyze = "analyze"
	opSuggest = "suggest"
	opChat    = "chat"
	opStream  = "chat_stream"
)

// generativeModel is the slice of the Gemini SDK the service relies on.
// Chat calls take the full replayed history so no session state lives in
// the service.
type generativeModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	SendMessage(ctx context.Context, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	SendMessageStream(ctx context.Context, history []*genai.Content, parts ...genai.Part) responseIterator
}

type responseIterator interface {
	Next() (*genai.GenerateContentResponse, error)
}

type imageSource interface {
	Fetch(ctx context.Context, imageURL string) (*FetchedImage, error)
}

// geminiModel adapts *genai.GenerativeModel to generativeModel.
type geminiModel struct {
	model *genai.GenerativeModel
}

func (m *geminiModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return m.model.GenerateContent(ctx, parts...)
}

func (m *geminiModel) SendMessage(ctx context.Context, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	cs := m.model.StartChat()
	cs.History = history
	return cs.SendMessage(ctx, parts...)
}

func (m *geminiModel) SendMessageStream(ctx context.Context, history []*genai.Content, parts ...genai.Part) responseIterator {
	cs := m.model.StartChat()
	cs.History = history
	return cs.SendMessageStream(ctx, parts...)
}

type GeminiService struct {
	client *genai.Client
	model  generativeModel
	images imageSource
	logger *zap.Logger
}

// NewGeminiService connects to Gemini. An empty apiKey is not an error: the
// service is still returned and every call fails with ErrMissingAPIKey.
func NewGeminiService(ctx context.Context, apiKey, modelName string, images imageSource, logger *zap.Logger) (*GeminiService, error) {
	s := &GeminiService{images: images, logger: logger}
	if apiKey == "" {
		logger.Warn("GOOGLE_GEMINI_API_KEY is not set; AI endpoints will fail until it is configured")
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s.client = client
	s.model = &geminiModel{model: client.GenerativeModel(modelName)}
	return s, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *GeminiService) requireModel(op string) (generativeModel, error) {
	if s.model == nil {
		return nil, &UpstreamError{Op: op, Err: ErrMissingAPIKey}
	}
	return s.model, nil
}

// AnalyzeImage describes an image and proposes transformations for it.
func (s *GeminiService) AnalyzeImage(ctx context.Context, imageURL string) (result *models.ImageAnalysisResult, err error) {
	defer func(start time.Time) { observe(opAnalyze, start, err, "") }(time.Now())

	if strings.TrimSpace(imageURL) == "" {
		return nil, &ValidationError{Message: "Image URL is required"}
	}

	text, err := s.generateFromImage(ctx, opAnalyze, imageURL, analysisPrompt)
	if err != nil {
		return nil, err
	}

	span, ok := FindObjectSpan(text)
	if !ok {
		return nil, &ParseError{Op: opAnalyze, Err: ErrNoJSONObject}
	}

	var analysis models.ImageAnalysisResult
	if err := json.Unmarshal([]byte(span), &analysis); err != nil {
		return nil, &ParseError{Op: opAnalyze, Err: fmt.Errorf("decode analysis: %w", err)}
	}
	analysis.Normalize()

	return &analysis, nil
}

// SuggestPrompts proposes remove or recolor targets for an image. A reply
// without any JSON array yields an empty list, not an error.
func (s *GeminiService) SuggestPrompts(ctx context.Context, imageURL string, t models.SuggestionType) (suggestions []models.PromptSuggestion, err error) {
	outcome := ""
	defer func(start time.Time) { observe(opSuggest, start, err, outcome) }(time.Now())

	if strings.TrimSpace(imageURL) == "" {
		return nil, &ValidationError{Message: "Image URL is required"}
	}
	if !t.Valid() {
		return nil, &ValidationError{Message: "Valid transformation type (remove/recolor) is required"}
	}

	text, err := s.generateFromImage(ctx, opSuggest, imageURL, suggestionPrompt(t))
	if err != nil {
		return nil, err
	}

	span, ok := FindArraySpan(text)
	if !ok {
		outcome = outcomeEmpty
		s.logger.Debug("no suggestion array in model response", zap.String("transformation_type", string(t)))
		return []models.PromptSuggestion{}, nil
	}

	var raw []models.PromptSuggestion
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, &ParseError{Op: opSuggest, Err: fmt.Errorf("decode suggestions: %w", err)}
	}

	suggestions = models.NormalizeSuggestions(raw, t)
	if len(suggestions) == 0 {
		outcome = outcomeEmpty
	}
	return suggestions, nil
}

// ChatWithAssistant answers the last message of the conversation, replaying
// the earlier turns as history. The reply is returned verbatim.
func (s *GeminiService) ChatWithAssistant(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext) (reply string, err error) {
	defer func(start time.Time) { observe(opChat, start, err, "") }(time.Now())

	history, last, err := buildChatTurns(messages, chatCtx)
	if err != nil {
		return "", err
	}

	model, err := s.requireModel(opChat)
	if err != nil {
		return "", err
	}

	resp, err := model.SendMessage(ctx, history, genai.Text(last.Content))
	if err != nil {
		return "", &UpstreamError{Op: opChat, Err: err}
	}
	s.logFinishReasons(opChat, resp)

	return extractText(resp), nil
}

// StreamChat is ChatWithAssistant with incremental delivery: every text
// delta is handed to onChunk as it arrives. It returns the full reply. An
// error from onChunk stops the stream and is returned unchanged.
func (s *GeminiService) StreamChat(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext, onChunk func(string) error) (reply string, err error) {
	defer func(start time.Time) { observe(opStream, start, err, "") }(time.Now())

	history, last, err := buildChatTurns(messages, chatCtx)
	if err != nil {
		return "", err
	}

	model, err := s.requireModel(opStream)
	if err != nil {
		return "", err
	}

	iter := model.SendMessageStream(ctx, history, genai.Text(last.Content))

	var full strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return full.String(), &UpstreamError{Op: opStream, Err: err}
		}

		chunk := extractText(resp)
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			return full.String(), err
		}
	}

	return full.String(), nil
}

func (s *GeminiService) generateFromImage(ctx context.Context, op, imageURL, prompt string) (string, error) {
	model, err := s.requireModel(op)
	if err != nil {
		return "", err
	}

	img, err := s.images.Fetch(ctx, imageURL)
	if err != nil {
		return "", &UpstreamError{Op: op, Err: err}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt), img.Part())
	if err != nil {
		return "", &UpstreamError{Op: op, Err: fmt.Errorf("Gemini API error: %w", err)}
	}
	s.logFinishReasons(op, resp)

	return extractText(resp), nil
}

func (s *GeminiService) logFinishReasons(op string, resp *genai.GenerateContentResponse) {
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			s.logger.Warn("Gemini candidate stopped early",
				zap.String("operation", op),
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
	}
}

// buildChatTurns seeds the conversation with the system instruction and a
// canned acknowledgement, then replays every message except the last one,
// which becomes the live turn.
func buildChatTurns(messages []models.ChatMessage, chatCtx *models.ChatContext) ([]*genai.Content, models.ChatMessage, error) {
	if len(messages) == 0 {
		return nil, models.ChatMessage{}, &ValidationError{Message: "Messages array is required"}
	}

	history := make([]*genai.Content, 0, len(messages)+1)
	history = append(history,
		&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(buildChatSystemPrompt(chatCtx))}},
		&genai.Content{Role: "model", Parts: []genai.Part{genai.Text(chatAcknowledgement)}},
	)

	for _, msg := range messages[:len(messages)-1] {
		role := "model"
		if msg.Role == models.RoleUser {
			role = "user"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}

	return history, messages[len(messages)-1], nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
