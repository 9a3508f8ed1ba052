package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(s))
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Weekly report"},
				{Name: "From", Value: "boss@corp.example"},
			},
		},
	}

	assert.Equal(t, "Weekly report", HeaderValue(msg, "Subject"))
	assert.Equal(t, "boss@corp.example", HeaderValue(msg, "From"))
	assert.Equal(t, "", HeaderValue(msg, "Date"))
	assert.Equal(t, "", HeaderValue(&gmail.Message{}, "Subject"))
}

func TestExtractBodyPlainText(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: encodeBody("hello world")},
	}

	assert.Equal(t, "hello world", ExtractBody(payload))
}

func TestExtractBodyPrefersPlainOverHTML(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encodeBody("<p>rich</p>")},
			},
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: encodeBody("plain")},
			},
		},
	}

	assert.Equal(t, "plain", ExtractBody(payload))
}

func TestExtractBodyFallsBackToHTML(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encodeBody("<p>only html</p>")},
			},
		},
	}

	assert.Contains(t, ExtractBody(payload), "only html")
	assert.NotContains(t, ExtractBody(payload), "<p>")
}

func TestExtractBodyNilPayload(t *testing.T) {
	assert.Equal(t, "", ExtractBody(nil))
}

func TestParseDate(t *testing.T) {
	got := parseDate("Mon, 02 Jun 2025 15:04:05 +0000")
	assert.Equal(t, time.Date(2025, 6, 2, 15, 4, 5, 0, time.UTC), got.UTC())

	// Malformed dates fall back to now rather than failing the fetch.
	fallback := parseDate("not a date")
	assert.WithinDuration(t, time.Now(), fallback, time.Minute)
}
