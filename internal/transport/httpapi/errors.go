package httpapi

import (
	"errors"
	"net/http"

	"github.com/riekert7/whapi-bridge/internal/channels"
	"github.com/riekert7/whapi-bridge/internal/gateway"
	"github.com/riekert7/whapi-bridge/internal/messages"
)

func MapError(err error) (status int, code, msg string) {
	var apiErr *gateway.APIError

	switch {
	case errors.Is(err, channels.ErrChannelNotFound):
		return http.StatusNotFound, "channel_not_found", err.Error()

	case errors.Is(err, channels.ErrChannelAlreadyExists):
		return http.StatusConflict, "channel_already_exists", err.Error()

	case errors.Is(err, channels.ErrChannelIDIsRequired):
		return http.StatusBadRequest, "channel_id_required", err.Error()

	case errors.Is(err, channels.ErrTokenIsRequired):
		return http.StatusBadRequest, "token_required", err.Error()

	case errors.Is(err, messages.ErrMessageNotFound):
		return http.StatusNotFound, "message_not_found", err.Error()

	case errors.Is(err, messages.ErrToIsRequired):
		return http.StatusBadRequest, "to_required", err.Error()

	case errors.Is(err, messages.ErrBodyOrAttachIsRequired):
		return http.StatusBadRequest, "body_or_attach_required", err.Error()

	case errors.Is(err, messages.ErrUnsupportedContentType):
		return http.StatusBadRequest, "unsupported_content_type", err.Error()

	case errors.Is(err, messages.ErrDuplicateProviderID):
		return http.StatusConflict, "duplicate_provider_message_id", err.Error()

	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "gateway_error", apiErr.Error()
	}

	return http.StatusInternalServerError, "internal_error", "internal server error"
}
