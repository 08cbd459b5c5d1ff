package messages

import (
	"errors"
)

var (
	ErrMessageNotFound        = errors.New("message is not found")
	ErrToIsRequired           = errors.New("to is required")
	ErrBodyOrAttachIsRequired = errors.New("body or attach is required")
	ErrUnsupportedContentType = errors.New("unsupported content type for outbound send")
	ErrDuplicateProviderID    = errors.New("provider message id already exists")
)
