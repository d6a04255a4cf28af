package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessage_UnmarshalTimestamp(t *testing.T) {
	tests := []struct {
		name string
		body string
		want time.Time
	}{
		{"rfc3339 string", `{"role":"user","content":"Hi","timestamp":"2024-01-01T00:00:00Z"}`, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"epoch millis", `{"role":"user","content":"Hi","timestamp":1700000000000}`, time.UnixMilli(1700000000000)},
		{"missing", `{"role":"user","content":"Hi"}`, time.Time{}},
		{"null", `{"role":"user","content":"Hi","timestamp":null}`, time.Time{}},
		{"unparsable string", `{"role":"user","content":"Hi","timestamp":"yesterday"}`, time.Time{}},
		{"object", `{"role":"user","content":"Hi","timestamp":{"seconds":1}}`, time.Time{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m ChatMessage
			require.NoError(t, json.Unmarshal([]byte(tc.body), &m))

			assert.Equal(t, RoleUser, m.Role)
			assert.Equal(t, "Hi", m.Content)
			assert.True(t, tc.want.Equal(m.Timestamp), "got %v", m.Timestamp)
		})
	}
}

func TestChatMessage_RoundTripKeepsTimestamp(t *testing.T) {
	msg := ChatMessage{Role: RoleAssistant, Content: "ok", Timestamp: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var got ChatMessage
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, msg.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, msg.Content, got.Content)
}
