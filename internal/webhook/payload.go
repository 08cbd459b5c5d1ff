package webhook

import (
	"encoding/json"
)

// Payload is one webhook delivery from the gateway: a flat map with an
// optional channel id and batched message and status events.
type Payload struct {
	ChannelID string           `json:"channel_id"`
	Messages  []InboundMessage `json:"messages"`
	Statuses  []StatusEvent    `json:"statuses"`
}

// InboundMessage is one raw message object as the gateway sends it. The
// content lives under a key named after the declared type ("image", "text",
// ...), so the full raw object is kept alongside the typed fields to serve
// media lookup and the unknown-type fallback.
type InboundMessage struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
	From   string `json:"from"`
	FromMe bool   `json:"from_me"`

	Text    *TextContent   `json:"text"`
	Action  *ActionContent `json:"action"`
	Context *QuotedContext `json:"context"`

	raw map[string]json.RawMessage
}

type TextContent struct {
	Body string `json:"body"`
}

type ActionContent struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

type QuotedContext struct {
	QuotedID string `json:"quoted_id"`
}

type MediaContent struct {
	ID      string `json:"id"`
	Mime    string `json:"mime"`
	Caption string `json:"caption"`
}

type StatusEvent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (m *InboundMessage) UnmarshalJSON(data []byte) error {
	type plain InboundMessage

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*m = InboundMessage(p)

	// Tolerated failure: raw stays nil and typed fields still carry the event.
	_ = json.Unmarshal(data, &m.raw)

	return nil
}

// Media decodes the content stored under the key matching the declared
// type. Returns nil when the key is absent or not an object.
func (m *InboundMessage) Media() *MediaContent {
	rawVal, ok := m.raw[m.Type]
	if !ok {
		return nil
	}

	var mc MediaContent
	if err := json.Unmarshal(rawVal, &mc); err != nil {
		return nil
	}

	return &mc
}

// RawValue renders whatever sits under the declared type's key as text, for
// the best-effort fallback on unrecognized types. Absent keys yield "".
func (m *InboundMessage) RawValue() string {
	rawVal, ok := m.raw[m.Type]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(rawVal, &s); err == nil {
		return s
	}

	return string(rawVal)
}
