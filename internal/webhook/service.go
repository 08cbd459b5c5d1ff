package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riekert7/whapi-bridge/internal/channels"
	"github.com/riekert7/whapi-bridge/internal/eventlog"
	"github.com/riekert7/whapi-bridge/internal/lib/logger/sl"
	"github.com/riekert7/whapi-bridge/internal/media"
	"github.com/riekert7/whapi-bridge/internal/messages"
	"github.com/riekert7/whapi-bridge/internal/ws"
)

type MediaFetcher interface {
	FetchMedia(ctx context.Context, apiURL, token, mediaID string) ([]byte, error)
}

type Broadcaster interface {
	Broadcast(chatID string, payload []byte)
}

// Service ingests webhook deliveries: audit-logs the raw payload, resolves
// the originating channel and feeds the contained events to the classifier
// and the status updater. It never surfaces an error to the gateway; the
// webhook endpoint must always answer success to avoid provider retry
// storms.
type Service struct {
	channels channels.Repo
	messages messages.Repo
	events   eventlog.Repo
	fetcher  MediaFetcher
	media    media.Store
	hub      Broadcaster
	log      *slog.Logger
}

func New(
	channelsRepo channels.Repo,
	messagesRepo messages.Repo,
	eventsRepo eventlog.Repo,
	fetcher MediaFetcher,
	mediaStore media.Store,
	hub Broadcaster,
	log *slog.Logger,
) *Service {
	return &Service{
		channels: channelsRepo,
		messages: messagesRepo,
		events:   eventsRepo,
		fetcher:  fetcher,
		media:    mediaStore,
		hub:      hub,
		log:      log,
	}
}

// Ingest handles one raw webhook delivery. The audit record is written
// first, before channel resolution, and its failure never stops ingestion.
func (s *Service) Ingest(ctx context.Context, raw []byte) {
	const op = "webhook.Ingest"

	log := s.log.With(slog.String("op", op))

	if err := s.events.Append(ctx, eventlog.SourceWebhook, raw); err != nil {
		log.Error("failed to append audit record", sl.Err(err))
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error("failed to decode payload", sl.Err(err))
		return
	}

	ch, err := s.channels.GetByChannelID(ctx, payload.ChannelID)
	if err != nil {
		log.Error("failed to resolve channel",
			slog.String("channel_id", payload.ChannelID),
			sl.Err(err),
		)
		return
	}

	s.processMessages(ctx, payload.Messages, ch)
	s.processStatuses(ctx, payload.Statuses)
}

// processMessages runs each raw message through the classifier. Messages
// are independent: a failure on one is logged and the rest keep going.
func (s *Service) processMessages(ctx context.Context, msgs []InboundMessage, ch channels.Channel) {
	for _, raw := range msgs {
		if err := s.processMessage(ctx, raw, ch); err != nil {
			s.log.Error("failed to process inbound message",
				slog.String("provider_message_id", raw.ID),
				sl.Err(err),
			)
		}
	}
}

// processMessage classifies one raw inbound message and produces zero or
// one canonical records. Self-sent messages and media whose fetch fails
// produce nothing.
func (s *Service) processMessage(ctx context.Context, raw InboundMessage, ch channels.Channel) error {
	const op = "webhook.processMessage"

	if raw.FromMe {
		return nil
	}

	var (
		isReply   bool
		replyToID *string
	)
	if raw.Context != nil && raw.Context.QuotedID != "" {
		isReply = true
		quoted := raw.Context.QuotedID
		replyToID = &quoted
	}

	providerID := raw.ID
	msg := messages.Message{
		Direction:         messages.DirectionIncoming,
		From:              raw.From,
		To:                ch.PhoneNumber,
		ChannelID:         ch.ChannelID,
		ProviderMessageID: &providerID,
		ChatID:            raw.ChatID,
		ContentType:       messages.ContentType(raw.Type),
		Status:            messages.StatusSuccess,
		ReplyToMessageID:  replyToID,
		IsReply:           isReply,
	}

	switch {
	case raw.Type == "text":
		if raw.Text != nil {
			msg.Body = raw.Text.Body
		}
		return s.createAndBroadcast(ctx, msg)

	case raw.Type == "action" && raw.Action != nil && raw.Action.Type == "reaction":
		msg.ContentType = messages.ContentTypeReaction
		msg.Body = raw.Action.Emoji
		return s.createAndBroadcast(ctx, msg)

	case msg.ContentType.HasMedia():
		return s.processMediaMessage(ctx, raw, msg, ch)
	}

	// Unknown declared types are recorded best-effort with whatever value
	// sits under the type's key.
	msg.Body = raw.RawValue()

	if err := s.createAndBroadcast(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// processMediaMessage fetches the referenced media and stores the record in
// two steps: create the message, save the bytes, then link the stored
// location. A crash between steps leaves a message whose attach is pending;
// no transaction spans the sequence.
func (s *Service) processMediaMessage(ctx context.Context, raw InboundMessage, msg messages.Message, ch channels.Channel) error {
	const op = "webhook.processMediaMessage"

	log := s.log.With(
		slog.String("op", op),
		slog.String("provider_message_id", raw.ID),
	)

	content := raw.Media()
	if content == nil {
		log.Error("media message without media content", slog.String("type", raw.Type))
		return nil
	}

	token, err := s.channels.GetToken(ctx, ch.ChannelID)
	if err != nil {
		return fmt.Errorf("%s: resolve token: %w", op, err)
	}

	data, err := s.fetcher.FetchMedia(ctx, ch.APIURL, token, content.ID)
	if err != nil {
		// Skip the whole message: no record, no partial state.
		log.Error("failed to fetch media", slog.String("media_id", content.ID), sl.Err(err))
		return nil
	}

	filename, err := media.Filename(content.Mime)
	if err != nil {
		return fmt.Errorf("%s: derive filename: %w", op, err)
	}

	msg.Body = content.Caption
	if msg.Body == "" {
		msg.Body = "/files/" + filename
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		return fmt.Errorf("%s: create message: %w", op, err)
	}

	location, err := s.media.Save(ctx, filename, content.Mime, data)
	if err != nil {
		return fmt.Errorf("%s: save media: %w", op, err)
	}

	if err := s.messages.SetAttach(ctx, created.ID, location); err != nil {
		return fmt.Errorf("%s: link attachment: %w", op, err)
	}

	created.Attach = location
	s.broadcast(created)

	return nil
}

// processStatuses matches each status event to a previously recorded
// message by provider id. Unknown ids are expected (messages sent through
// another integration) and ignored without logging.
func (s *Service) processStatuses(ctx context.Context, statuses []StatusEvent) {
	for _, st := range statuses {
		err := s.messages.UpdateStatusByProviderMessageID(ctx, st.ID, messages.Status(st.Status))
		if err != nil {
			if errors.Is(err, messages.ErrMessageNotFound) {
				continue
			}
			s.log.Error("failed to update message status",
				slog.String("provider_message_id", st.ID),
				sl.Err(err),
			)
		}
	}
}

func (s *Service) createAndBroadcast(ctx context.Context, msg messages.Message) error {
	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	s.broadcast(created)

	return nil
}

func (s *Service) broadcast(msg messages.Message) {
	if s.hub == nil {
		return
	}

	evt := ws.ServerEvent{
		Type:    ws.EventMessageNew,
		ChatID:  msg.ChatID,
		Message: &msg,
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		s.log.Error("failed to marshal ws event", sl.Err(err))
		return
	}

	s.hub.Broadcast(msg.ChatID, payload)
}
