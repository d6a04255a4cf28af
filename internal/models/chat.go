package models

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single turn in a widget conversation.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UnmarshalJSON accepts the timestamp as an RFC3339 string or as epoch
// milliseconds. Any other value leaves Timestamp zero instead of failing the
// message.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role      string          `json:"role"`
		Content   string          `json:"content"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Role = raw.Role
	m.Content = raw.Content
	m.Timestamp = parseTimestamp(raw.Timestamp)
	return nil
}

func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		return time.Time{}
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms))
	}
	return time.Time{}
}

// ChatContext describes what the user is currently editing.
type ChatContext struct {
	ImageURL           string `json:"imageUrl,omitempty"`
	TransformationType string `json:"transformationType,omitempty"`
}

// ChatRequest is the payload sent to the chat endpoints.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Context  *ChatContext  `json:"context,omitempty"`
}

// NewAssistantMessage stamps an assistant reply with the current time.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}
