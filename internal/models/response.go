package models

// SuccessResponse wraps every successful AI endpoint result.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse carries a single human-readable message. Server-side
// failures always use a fixed message so causes are not leaked.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamFrame is one websocket frame of a streamed chat reply.
type StreamFrame struct {
	Type    string       `json:"type"` // "chunk", "done" or "error"
	Content string       `json:"content,omitempty"`
	Data    *ChatMessage `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

const (
	FrameChunk = "chunk"
	FrameDone  = "done"
	FrameError = "error"
)
