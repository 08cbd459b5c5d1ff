package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riekert7/whapi-bridge/internal/channels"
	"github.com/riekert7/whapi-bridge/internal/gateway"
	"github.com/riekert7/whapi-bridge/internal/lib/logger/sl"
	"github.com/riekert7/whapi-bridge/internal/messages"
)

type Sender interface {
	SendMessage(ctx context.Context, token, contentType string, payload gateway.SendPayload) (gateway.SendResult, error)
}

// Notifier delivers outgoing messages to the gateway before they are
// persisted. A failed send marks the message Failed and is returned to the
// caller, which aborts creation.
type Notifier struct {
	sender  Sender
	baseURL string
	log     *slog.Logger
}

func New(sender Sender, baseURL string, log *slog.Logger) *Notifier {
	return &Notifier{sender: sender, baseURL: baseURL, log: log}
}

func (n *Notifier) Notify(ctx context.Context, msg *messages.Message, ch channels.Channel, token string) error {
	const op = "notifier.Notify"

	log := n.log.With(
		slog.String("op", op),
		slog.String("channel_id", ch.ChannelID),
	)

	msg.From = ch.PhoneNumber

	payload, err := BuildPayload(*msg, n.baseURL)
	if err != nil {
		msg.Status = messages.StatusFailed
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := n.sender.SendMessage(ctx, token, string(msg.ContentType), payload)
	if err != nil {
		msg.Status = messages.StatusFailed
		log.Error("failed to send message", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	msg.ProviderMessageID = &result.MessageID
	msg.Status = messages.Status(result.Status)
	if msg.Status == "" {
		msg.Status = messages.StatusSuccess
	}

	log.Info("message sent", slog.String("provider_message_id", result.MessageID))

	return nil
}

// BuildPayload maps an outgoing message onto the gateway payload for its
// content type. Relative attach paths are resolved against the public base
// URL. Content types outside the sendable set are rejected outright rather
// than falling through to an underspecified body.
func BuildPayload(msg messages.Message, baseURL string) (gateway.SendPayload, error) {
	mediaURL := resolveMediaURL(msg.Attach, baseURL)

	switch msg.ContentType {
	case messages.ContentTypeText:
		return gateway.SendPayload{
			To:   msg.To,
			Body: msg.Body,
		}, nil

	case messages.ContentTypeImage, messages.ContentTypeVideo, messages.ContentTypeAudio:
		return gateway.SendPayload{
			To:      msg.To,
			Media:   mediaURL,
			Caption: msg.Body,
		}, nil

	case messages.ContentTypeDocument:
		return gateway.SendPayload{
			To:       msg.To,
			Media:    mediaURL,
			Caption:  msg.Body,
			Filename: lastPathSegment(mediaURL),
		}, nil
	}

	return gateway.SendPayload{}, fmt.Errorf("%w: %s", messages.ErrUnsupportedContentType, msg.ContentType)
}

func resolveMediaURL(attach, baseURL string) string {
	if attach == "" || strings.HasPrefix(attach, "http") {
		return attach
	}

	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(attach, "/")
}

func lastPathSegment(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
