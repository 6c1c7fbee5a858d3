package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beespeak/honeypot/internal/session"
)

func ts(v int64) *int64 { return &v }

func validRequest() Request {
	return Request{
		SessionID: "sess-1",
		Message:   IncomingMessage{Sender: "scammer", Text: "hello", Timestamp: ts(100)},
		ConversationHistory: []IncomingMessage{
			{Sender: "user", Text: "hi", Timestamp: ts(50)},
		},
		Metadata: session.Metadata{Channel: "SMS", Language: "English", Locale: "IN"},
	}
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, validRequest().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"blank session id", func(r *Request) { r.SessionID = "   " }, "sessionId"},
		{"unknown sender", func(r *Request) { r.Message.Sender = "support" }, "message.sender"},
		{"blank text", func(r *Request) { r.Message.Text = "  " }, "message.text"},
		{"bad history entry", func(r *Request) { r.ConversationHistory[0].Sender = "" }, "conversationHistory[0].sender"},
		{"missing channel", func(r *Request) { r.Metadata.Channel = "" }, "metadata.channel"},
		{"missing language", func(r *Request) { r.Metadata.Language = "" }, "metadata.language"},
		{"missing locale", func(r *Request) { r.Metadata.Locale = "" }, "metadata.locale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateNormalizesSenderCase(t *testing.T) {
	req := validRequest()
	req.Message.Sender = "  Scammer "
	assert.NoError(t, req.Validate())
	assert.Equal(t, "scammer", req.Message.toHistory().Sender)
}

func TestToHistoryDefaultsTimestamp(t *testing.T) {
	msg := IncomingMessage{Sender: "user", Text: "hey"}
	assert.EqualValues(t, 0, msg.toHistory().Timestamp)
}
