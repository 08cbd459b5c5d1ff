package messages

import (
	"context"
	"strings"
	"time"
)

type Direction string

const (
	DirectionIncoming Direction = "Incoming"
	DirectionOutgoing Direction = "Outgoing"
)

// ContentType is the closed set of message content kinds the gateway speaks.
// Unknown provider types are preserved verbatim so forward-compatible
// payloads still round-trip through storage.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeVideo    ContentType = "video"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeDocument ContentType = "document"
	ContentTypeSticker  ContentType = "sticker"
	ContentTypeReaction ContentType = "reaction"
	ContentTypeOther    ContentType = "other"
)

var knownContentTypes = map[ContentType]struct{}{
	ContentTypeText:     {},
	ContentTypeImage:    {},
	ContentTypeVideo:    {},
	ContentTypeAudio:    {},
	ContentTypeDocument: {},
	ContentTypeSticker:  {},
	ContentTypeReaction: {},
	ContentTypeOther:    {},
}

func (ct ContentType) Known() bool {
	_, ok := knownContentTypes[ct]
	return ok
}

// HasMedia reports whether the content type carries binary media that must
// be fetched from the gateway on ingest.
func (ct ContentType) HasMedia() bool {
	switch ct {
	case ContentTypeImage, ContentTypeVideo, ContentTypeAudio, ContentTypeSticker, ContentTypeDocument:
		return true
	}
	return false
}

type Status string

const (
	StatusPending Status = "Pending"
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Message is the canonical record of one WhatsApp message, inbound or
// outbound. ProviderMessageID is assigned by the gateway; once set it is
// unique across all messages and is the sole key used to resolve inbound
// status events.
type Message struct {
	ID                int64       `json:"id" db:"id"`
	Direction         Direction   `json:"direction" db:"direction"`
	From              string      `json:"from" db:"from_addr"`
	To                string      `json:"to" db:"to_addr"`
	ChannelID         string      `json:"channel_id" db:"channel_id"`
	ProviderMessageID *string     `json:"provider_message_id" db:"provider_message_id"`
	ChatID            string      `json:"chat_id" db:"chat_id"`
	ContentType       ContentType `json:"content_type" db:"content_type"`
	Body              string      `json:"body" db:"body"`
	Attach            string      `json:"attach" db:"attach"`
	Status            Status      `json:"status" db:"status"`
	ReplyToMessageID  *string     `json:"reply_to_message_id" db:"reply_to_message_id"`
	IsReply           bool        `json:"is_reply" db:"is_reply"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
}

type Repo interface {
	Create(ctx context.Context, msg Message) (Message, error)
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (Message, error)
	// UpdateStatusByProviderMessageID overwrites the status of the message
	// whose provider id matches. Returns ErrMessageNotFound when no message
	// matches; callers in the status pipeline ignore that case.
	UpdateStatusByProviderMessageID(ctx context.Context, providerMessageID string, status Status) error
	// SetAttach points an existing message at its stored media location.
	SetAttach(ctx context.Context, messageID int64, attach string) error
	ListByChatID(ctx context.Context, chatID string) ([]Message, error)
}

// FormatWaID normalizes a phone number into a WhatsApp ID: strips +, spaces
// and dashes, and replaces a leading 0 with the default country code.
func FormatWaID(phone, defaultCountryCode string) string {
	phone = strings.NewReplacer("+", "", " ", "", "-", "").Replace(phone)

	if strings.HasPrefix(phone, "0") {
		return defaultCountryCode + phone[1:]
	}

	return phone
}
