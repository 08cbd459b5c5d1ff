package messagesHandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/riekert7/whapi-bridge/internal/channels"
	resp "github.com/riekert7/whapi-bridge/internal/lib/api/response"
	"github.com/riekert7/whapi-bridge/internal/lib/logger/sl"
	"github.com/riekert7/whapi-bridge/internal/messages"
	"github.com/riekert7/whapi-bridge/internal/transport/httpapi"
)

type Notifier interface {
	Notify(ctx context.Context, msg *messages.Message, ch channels.Channel, token string) error
}

type Handler struct {
	Messages           messages.Repo
	Channels           channels.Repo
	Notifier           Notifier
	DefaultCountryCode string
	Log                *slog.Logger
}

type CreateMessageRequest struct {
	ChannelID   string `json:"channel_id"`
	To          string `json:"to"`
	ChatID      string `json:"chat_id"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	Attach      string `json:"attach"`
}

type CreateMessageResponse struct {
	resp.Response
	Message messages.Message `json:"message"`
}

type GetMessagesResponse struct {
	resp.Response
	Messages []messages.Message `json:"messages"`
}

func New(
	messagesRepo messages.Repo,
	channelsRepo channels.Repo,
	notifier Notifier,
	defaultCountryCode string,
	log *slog.Logger,
) *Handler {
	return &Handler{
		Messages:           messagesRepo,
		Channels:           channelsRepo,
		Notifier:           notifier,
		DefaultCountryCode: defaultCountryCode,
		Log:                log,
	}
}

// SendMessage creates an outgoing message. The gateway send runs before
// persistence; a send failure aborts creation and is surfaced to the
// caller.
func (h *Handler) SendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.SendMessage"

		log := h.Log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateMessageRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid body"))
			return
		}

		if strings.TrimSpace(req.To) == "" {
			httpapi.WriteError(w, r, messages.ErrToIsRequired)
			return
		}
		if req.Body == "" && req.Attach == "" {
			httpapi.WriteError(w, r, messages.ErrBodyOrAttachIsRequired)
			return
		}

		ch, err := h.Channels.GetByChannelID(r.Context(), req.ChannelID)
		if err != nil {
			log.Error("failed to resolve channel", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		token, err := h.Channels.GetToken(r.Context(), ch.ChannelID)
		if err != nil {
			log.Error("failed to resolve token", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		msg := messages.Message{
			Direction:   messages.DirectionOutgoing,
			To:          messages.FormatWaID(req.To, h.DefaultCountryCode),
			ChannelID:   ch.ChannelID,
			ChatID:      req.ChatID,
			ContentType: messages.ContentType(req.ContentType),
			Body:        req.Body,
			Attach:      req.Attach,
			Status:      messages.StatusPending,
		}

		if err := h.Notifier.Notify(r.Context(), &msg, ch, token); err != nil {
			log.Error("failed to send message", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		created, err := h.Messages.Create(r.Context(), msg)
		if err != nil {
			log.Error("failed to persist message", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, CreateMessageResponse{
			Response: resp.OK(),
			Message:  created,
		})
	}
}

func (h *Handler) GetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.GetMessages"

		log := h.Log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		chatID := chi.URLParam(r, "chatId")
		if chatID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid chat_id"))
			return
		}

		msgs, err := h.Messages.ListByChatID(r.Context(), chatID)
		if err != nil {
			log.Error("failed to get messages", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, GetMessagesResponse{
			Response: resp.OK(),
			Messages: msgs,
		})
	}
}
