package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editzen-backend/internal/models"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestChat_Success(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1)
		assert.Equal(t, "remove", req.Context.TransformationType)

		w.Write([]byte(`{"success":true,"data":{"role":"assistant","content":"Hello!","timestamp":"2024-01-01T00:00:00Z"}}`))
	})

	reply, err := c.Chat(context.Background(),
		[]models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}},
		&models.ChatContext{TransformationType: "remove"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Hello!", reply.Content)
}

func TestPost_ErrorEnvelope(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Image URL is required"}`))
	})

	_, err := c.Analyze(context.Background(), "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Image URL is required", apiErr.Message)
}

func TestPost_NonJSONError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.Suggest(context.Background(), "https://x/img.jpg", models.SuggestRemove)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestPost_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Analyze(context.Background(), "https://x/img.jpg")

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestSuggest_DecodesList(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"label":"Car","value":"car","suggestedColor":"blue","confidence":0.85}]}`))
	})

	got, err := c.Suggest(context.Background(), "https://x/img.jpg", models.SuggestRecolor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "blue", got[0].SuggestedColor)
	assert.True(t, got[0].IsHighConfidence())
}

func TestSuggest_NullDataIsEmpty(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":null}`))
	})

	got, err := c.Suggest(context.Background(), "https://x/img.jpg", models.SuggestRemove)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestChatStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/chat/stream", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var req models.ChatRequest
		require.NoError(t, conn.ReadJSON(&req))

		conn.WriteJSON(models.StreamFrame{Type: models.FrameChunk, Content: "Hel"})
		conn.WriteJSON(models.StreamFrame{Type: models.FrameChunk, Content: "lo"})
		msg := models.NewAssistantMessage("Hello")
		conn.WriteJSON(models.StreamFrame{Type: models.FrameDone, Data: &msg})
		conn.ReadMessage()
	})

	var chunks []string
	reply, err := c.ChatStream(context.Background(),
		[]models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}}, nil,
		func(s string) { chunks = append(chunks, s) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Hel", "lo"}, chunks)
	assert.Equal(t, "Hello", reply.Content)
}

func TestChatStream_ErrorFrame(t *testing.T) {
	upgrader := websocket.Upgrader{}
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var req models.ChatRequest
		conn.ReadJSON(&req)
		conn.WriteJSON(models.StreamFrame{Type: models.FrameError, Error: "Failed to get chat response"})
		conn.ReadMessage()
	})

	_, err := c.ChatStream(context.Background(), []models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}}, nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to get chat response", apiErr.Message)
}
