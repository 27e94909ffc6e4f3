// Package mailbox ingests payment confirmation emails from a Gmail inbox.
// It is the reference implementation of the ingestion collaborator; the
// verification core only ever sees model.EmailMessage values.
package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/model"
)

// DefaultQuery selects unread messages in the inbox; the poller narrows
// this further via configuration when the merchant uses labels.
const DefaultQuery = "in:inbox is:unread"

// Client reads payment notification emails from Gmail.
type Client struct {
	service *gmail.Service
	query   string
}

// NewClient builds a Gmail client from an OAuth token.
func NewClient(ctx context.Context, config OAuth2Config, token *oauth2.Token, query string) (*Client, error) {
	if query == "" {
		query = DefaultQuery
	}

	source := oauthConfig(config).TokenSource(ctx, token)
	service, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMailboxConnection, err)
	}

	return &Client{service: service, query: query}, nil
}

// FetchUnread returns up to limit unread messages matching the query,
// decoded into EmailMessage records.
func (c *Client) FetchUnread(ctx context.Context, limit int64) ([]model.EmailMessage, error) {
	if limit <= 0 {
		limit = 25
	}

	list, err := c.service.Users.Messages.List("me").
		Q(c.query).
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", common.ErrMailboxConnection, err)
	}

	emails := make([]model.EmailMessage, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := c.service.Users.Messages.Get("me", ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("%w: get message %s: %v", common.ErrMailboxConnection, ref.Id, err)
		}
		emails = append(emails, decodeMessage(msg))
	}

	return emails, nil
}

// MarkProcessed removes the UNREAD label so the message is not fetched again.
func (c *Client) MarkProcessed(ctx context.Context, messageID string) error {
	_, err := c.service.Users.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: mark processed %s: %v", common.ErrMailboxConnection, messageID, err)
	}
	return nil
}

// decodeMessage flattens a Gmail message into an EmailMessage. ReceivedAt
// comes from the message's internal date, not from anything inside the body.
func decodeMessage(msg *gmail.Message) model.EmailMessage {
	email := model.EmailMessage{
		ID:         msg.Id,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}

	if msg.Payload == nil {
		return email
	}
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			email.FromAddress = header.Value
		case "Subject":
			email.Subject = header.Value
		}
	}
	email.Body = extractBody(msg.Payload)
	return email
}

// extractBody walks the MIME tree, preferring text/plain parts and falling
// back to whatever body data exists.
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.HasPrefix(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}

	for _, child := range part.Parts {
		if body := extractBody(child); body != "" {
			return body
		}
	}

	if part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	// Gmail emits unpadded base64url; some providers pad or use the
	// standard alphabet.
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding, base64.URLEncoding, base64.StdEncoding,
	} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded)
		}
	}
	return ""
}
