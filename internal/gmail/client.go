package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxgroups/internal/google"
	"github.com/teemow/inboxgroups/internal/instrumentation"
)

// maxPageSize is the largest page the Gmail list API serves.
const maxPageSize = 100

// Client wraps the Gmail Users service for one account.
type Client struct {
	svc     *gmail.UsersService
	account string
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the account.
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientWithProvider creates a Gmail client authenticated with a token
// from the given provider.
func NewClientWithProvider(ctx context.Context, provider google.TokenProvider, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClient(ctx, provider, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Run 'inboxgroups auth' first", account, err)
	}

	svc, err := gmail.New(httpClient)
	if err != nil {
		return nil, err
	}

	return &Client{
		svc:     svc.Users,
		account: account,
		logger:  slog.Default().With(slog.String("service", "gmail")),
	}, nil
}

// NewClientForAccount creates a Gmail client authenticated with the cached
// OAuth token for the given account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientWithProvider(ctx, google.NewFileTokenProvider(), account)
}

// NewClient creates a Gmail client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// WithMetrics attaches API operation metrics to the client and returns it.
func (c *Client) WithMetrics(m *instrumentation.Metrics) *Client {
	c.metrics = m
	return c
}

// recordOperation records one API call against the operation counters.
func (c *Client) recordOperation(ctx context.Context, operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGmailOperation(ctx, operation, status, time.Since(start))
}

// ListRecentMessages fetches up to limit recent inbox messages, newest
// first, making multiple list calls if necessary and a full get per
// message. Individual messages that fail to fetch or decode are skipped,
// not fatal.
func (c *Client) ListRecentMessages(ctx context.Context, limit int64) ([]MessageData, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	ctx, span := instrumentation.StartGmailSpan(ctx, instrumentation.OperationList,
		instrumentation.AccountAttr(c.account))
	defer span.End()

	var ids []string
	pageToken := ""
	for {
		remaining := limit - int64(len(ids))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		req := c.svc.Messages.List("me").LabelIds(LabelInbox).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		start := time.Now()
		res, err := req.Do()
		c.recordOperation(ctx, instrumentation.OperationList, start, err)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return nil, fmt.Errorf("listing inbox messages: %w", err)
		}
		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}
		if res.NextPageToken == "" || int64(len(ids)) >= limit {
			break
		}
		pageToken = res.NextPageToken
	}
	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}

	messages := make([]MessageData, 0, len(ids))
	for _, id := range ids {
		msg, err := c.getMessage(ctx, id)
		if err != nil {
			c.logger.Warn("skipping message that failed to fetch",
				slog.String("message_id", id), slog.String("error", err.Error()))
			continue
		}
		messages = append(messages, msg)
	}

	instrumentation.AddSpanEvent(span, "messages fetched",
		instrumentation.MessagesAttr(len(messages)))
	instrumentation.SetSpanSuccess(span)
	return messages, nil
}

// getMessage fetches one message in full format and extracts its fields.
func (c *Client) getMessage(ctx context.Context, id string) (MessageData, error) {
	start := time.Now()
	m, err := c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	c.recordOperation(ctx, instrumentation.OperationGet, start, err)
	if err != nil {
		return MessageData{}, fmt.Errorf("getting message %s: %w", id, err)
	}

	data := MessageData{
		ExternalID: m.Id,
		Subject:    HeaderValue(m, "Subject"),
		Sender:     HeaderValue(m, "From"),
		Body:       ExtractBody(m.Payload),
	}
	if data.Subject == "" {
		data.Subject = "No Subject"
	}
	if data.Sender == "" {
		data.Sender = "Unknown Sender"
	}
	data.ReceivedAt = parseDate(HeaderValue(m, "Date"))
	return data, nil
}

// ModifyLabels adds and removes labels on a message.
func (c *Client) ModifyLabels(ctx context.Context, externalID string, add, remove []string) error {
	ctx, span := instrumentation.StartGmailSpan(ctx, instrumentation.OperationModify,
		instrumentation.AccountAttr(c.account),
		instrumentation.MessageIDAttr(externalID))
	defer span.End()

	start := time.Now()
	_, err := c.svc.Messages.Modify("me", externalID, &gmail.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	c.recordOperation(ctx, instrumentation.OperationModify, start, err)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return fmt.Errorf("modifying labels on message %s: %w", externalID, err)
	}
	instrumentation.SetSpanSuccess(span)
	return nil
}

// Archive archives a message by removing the INBOX label.
func (c *Client) Archive(ctx context.Context, externalID string) error {
	return c.ModifyLabels(ctx, externalID, nil, []string{LabelInbox})
}

// Unarchive moves a message back to the inbox.
func (c *Client) Unarchive(ctx context.Context, externalID string) error {
	return c.ModifyLabels(ctx, externalID, []string{LabelInbox}, nil)
}
