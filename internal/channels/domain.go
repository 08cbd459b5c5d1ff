package channels

import (
	"context"
	"time"
)

// Channel is a configured WhatsApp sending identity. It is created by an
// administrator and read-only at runtime; inbound webhook deliveries are
// authenticated only by resolving their channel_id against this table.
type Channel struct {
	ID          int64     `json:"id" db:"id"`
	ChannelID   string    `json:"channel_id" db:"channel_id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	APIURL      string    `json:"api_url" db:"api_url"`
	Token       string    `json:"-" db:"token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Repo interface {
	Create(ctx context.Context, ch Channel) (Channel, error)
	GetByChannelID(ctx context.Context, channelID string) (Channel, error)
	List(ctx context.Context) ([]Channel, error)
	// GetToken resolves the bearer token for a channel at call time. The
	// token must not be cached beyond the single gateway call it serves.
	GetToken(ctx context.Context, channelID string) (string, error)
}

type CreateChannelRequest struct {
	ChannelID   string `json:"channel_id"`
	PhoneNumber string `json:"phone_number"`
	APIURL      string `json:"api_url"`
	Token       string `json:"token"`
}
