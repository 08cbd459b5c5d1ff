package channels

import (
	"errors"
)

var (
	ErrChannelNotFound      = errors.New("channel is not found")
	ErrChannelAlreadyExists = errors.New("channel already exists")
	ErrChannelIDIsRequired  = errors.New("channel_id is required")
	ErrTokenIsRequired      = errors.New("token is required")
)
