package channelsHandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/riekert7/whapi-bridge/internal/channels"
	resp "github.com/riekert7/whapi-bridge/internal/lib/api/response"
	"github.com/riekert7/whapi-bridge/internal/lib/logger/sl"
	"github.com/riekert7/whapi-bridge/internal/transport/httpapi"
)

type Handler struct {
	Repo channels.Repo
	Log  *slog.Logger
}

type CreateChannelResponse struct {
	resp.Response
	Channel channels.Channel `json:"channel"`
}

type ListChannelsResponse struct {
	resp.Response
	Channels []channels.Channel `json:"channels"`
}

func New(repo channels.Repo, log *slog.Logger) *Handler {
	return &Handler{Repo: repo, Log: log}
}

func (h *Handler) CreateChannel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.channels.CreateChannel"

		log := h.Log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req channels.CreateChannelRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid body"))
			return
		}

		if req.ChannelID == "" {
			httpapi.WriteError(w, r, channels.ErrChannelIDIsRequired)
			return
		}
		if req.Token == "" {
			httpapi.WriteError(w, r, channels.ErrTokenIsRequired)
			return
		}

		ch, err := h.Repo.Create(r.Context(), channels.Channel{
			ChannelID:   req.ChannelID,
			PhoneNumber: req.PhoneNumber,
			APIURL:      req.APIURL,
			Token:       req.Token,
		})
		if err != nil {
			log.Error("failed to create channel", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		log.Info("channel created", slog.String("channel_id", ch.ChannelID))

		render.JSON(w, r, CreateChannelResponse{
			Response: resp.OK(),
			Channel:  ch,
		})
	}
}

func (h *Handler) ListChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.channels.ListChannels"

		log := h.Log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		chs, err := h.Repo.List(r.Context())
		if err != nil {
			log.Error("failed to list channels", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, ListChannelsResponse{
			Response: resp.OK(),
			Channels: chs,
		})
	}
}
