package ws

import "github.com/riekert7/whapi-bridge/internal/messages"

const (
	EventMessageNew = "message.new"
)

type ServerEvent struct {
	Type    string            `json:"type"`
	ChatID  string            `json:"chat_id"`
	Message *messages.Message `json:"message,omitempty"`
}
