package eventlog

import (
	"context"
	"time"
)

// Entry is a raw audit record of one inbound gateway delivery. Entries are
// appended before any processing so the original payload survives even when
// classification or storage of the contained events fails.
type Entry struct {
	ID        int64     `json:"id" db:"id"`
	Source    string    `json:"source" db:"source"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const SourceWebhook = "webhook"

type Repo interface {
	Append(ctx context.Context, source string, payload []byte) error
}
