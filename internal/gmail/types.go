package gmail

import "time"

// Gmail system labels used by the archive flow.
const (
	LabelInbox = "INBOX"
)

// MessageData is the provider-neutral view of one fetched message.
type MessageData struct {
	ExternalID string
	Subject    string
	Sender     string
	Body       string
	ReceivedAt time.Time
}
