package gmail

import (
	"encoding/base64"
	"net/mail"
	"regexp"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// HeaderValue extracts a header value from a Gmail message.
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// ExtractBody extracts the body text from a message payload. Plain text
// parts are preferred; an HTML part is used, tags stripped, only when no
// plain text exists. Undecodable parts are skipped.
func ExtractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) > 0 {
		var plain, html string
		for _, part := range payload.Parts {
			switch part.MimeType {
			case "text/plain":
				plain += decodePartBody(part)
			case "text/html":
				if html == "" {
					html = decodePartBody(part)
				}
			default:
				// Nested multipart containers.
				if len(part.Parts) > 0 && plain == "" {
					plain = ExtractBody(part)
				}
			}
		}
		if plain != "" {
			return plain
		}
		return htmlTagPattern.ReplaceAllString(html, " ")
	}

	body := decodePartBody(payload)
	if payload.MimeType == "text/html" {
		return htmlTagPattern.ReplaceAllString(body, " ")
	}
	return body
}

// decodePartBody base64url-decodes a single part's body data.
func decodePartBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(part.Body.Data)
	if err != nil {
		return ""
	}
	return string(raw)
}

// parseDate parses an RFC 5322 date header, falling back to the current
// time when the header is missing or malformed.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	t, err := mail.ParseDate(value)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
