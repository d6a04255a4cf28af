package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"editzen-backend/internal/client"
	"editzen-backend/internal/models"
)

const (
	FallbackConnect = "Sorry, I couldn't connect. Please try again."
	FallbackError   = "Sorry, I encountered an error. Please try again."
)

var (
	ErrBusy         = errors.New("a reply is already pending")
	ErrEmptyMessage = errors.New("message is empty")
	ErrClosed       = errors.New("chat session is closed")
)

var quickActions = []string{
	"How do I remove an object?",
	"What is generative fill?",
	"How to change colors?",
}

type chatBackend interface {
	Chat(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext) (*models.ChatMessage, error)
}

// ChatSession is the state of one open chat widget. It is either idle or
// awaiting a reply; only one request is in flight at a time.
type ChatSession struct {
	mu       sync.Mutex
	backend  chatBackend
	chatCtx  *models.ChatContext
	messages []models.ChatMessage
	input    string
	awaiting bool
	closed   bool
}

func NewChatSession(backend chatBackend, chatCtx *models.ChatContext) *ChatSession {
	return &ChatSession{backend: backend, chatCtx: chatCtx}
}

func (s *ChatSession) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

// SetContext replaces the editing context sent with later requests. A
// request already in flight keeps the context it started with.
func (s *ChatSession) SetContext(chatCtx *models.ChatContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatCtx = chatCtx
}

func (s *ChatSession) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SubmitInput sends the current input field.
func (s *ChatSession) SubmitInput(ctx context.Context) (models.ChatMessage, error) {
	return s.Send(ctx, s.Input())
}

// Send appends a user message, clears the input and waits for the reply.
// A failed request still appends an assistant message carrying the
// fallback text; the cause is returned alongside it.
func (s *ChatSession) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrClosed
	}
	if s.awaiting {
		s.mu.Unlock()
		return models.ChatMessage{}, ErrBusy
	}
	s.messages = append(s.messages, models.ChatMessage{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	s.input = ""
	s.awaiting = true
	history := append([]models.ChatMessage(nil), s.messages...)
	chatCtx := s.chatCtx
	s.mu.Unlock()

	reply, err := s.backend.Chat(ctx, history, chatCtx)

	var msg models.ChatMessage
	if err != nil {
		msg = models.NewAssistantMessage(fallbackFor(err))
	} else {
		msg = *reply
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}
		msg.Role = models.RoleAssistant
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaiting = false
	if s.closed {
		return msg, ErrClosed
	}
	s.messages = append(s.messages, msg)
	return msg, err
}

func fallbackFor(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return FallbackError
	}
	return FallbackConnect
}

// Messages returns a copy of the conversation in insertion order.
func (s *ChatSession) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

func (s *ChatSession) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// QuickActions are offered only while the conversation is empty.
func (s *ChatSession) QuickActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) > 0 {
		return nil
	}
	return append([]string(nil), quickActions...)
}

// Close discards the conversation. A reply that arrives afterwards is
// dropped.
func (s *ChatSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.messages = nil
	s.input = ""
}
