package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/riekert7/whapi-bridge/internal/channels"
	"github.com/riekert7/whapi-bridge/internal/eventlog"
	"github.com/riekert7/whapi-bridge/internal/messages"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db *sqlx.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	db, err := sqlx.Open("sqlite3", storagePath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: apply schema: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) CreateChannel(ctx context.Context, ch channels.Channel) (channels.Channel, error) {
	const op = "storage.sqlite.CreateChannel"

	err := s.db.GetContext(
		ctx,
		&ch,
		`INSERT INTO channels (channel_id, phone_number, api_url, token)
		VALUES (?, ?, ?, ?)
		RETURNING id, channel_id, phone_number, api_url, token, created_at`,
		ch.ChannelID, ch.PhoneNumber, ch.APIURL, ch.Token,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return channels.Channel{}, fmt.Errorf("%s: %w", op, channels.ErrChannelAlreadyExists)
		}
		return channels.Channel{}, fmt.Errorf("%s: insert channel: %w", op, err)
	}

	return ch, nil
}

func (s *Storage) GetChannelByChannelID(ctx context.Context, channelID string) (channels.Channel, error) {
	const op = "storage.sqlite.GetChannelByChannelID"

	var ch channels.Channel
	err := s.db.GetContext(
		ctx,
		&ch,
		`SELECT id, channel_id, phone_number, api_url, token, created_at
		FROM channels
		WHERE channel_id = ?`,
		channelID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return channels.Channel{}, fmt.Errorf("%s: %w", op, channels.ErrChannelNotFound)
		}
		return channels.Channel{}, fmt.Errorf("%s: select channel: %w", op, err)
	}

	return ch, nil
}

func (s *Storage) ListChannels(ctx context.Context) ([]channels.Channel, error) {
	const op = "storage.sqlite.ListChannels"

	var chs []channels.Channel
	err := s.db.SelectContext(
		ctx,
		&chs,
		`SELECT id, channel_id, phone_number, api_url, token, created_at
		FROM channels
		ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: select channels: %w", op, err)
	}

	return chs, nil
}

func (s *Storage) GetChannelToken(ctx context.Context, channelID string) (string, error) {
	const op = "storage.sqlite.GetChannelToken"

	var token string
	err := s.db.GetContext(
		ctx,
		&token,
		`SELECT token FROM channels WHERE channel_id = ?`,
		channelID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, channels.ErrChannelNotFound)
		}
		return "", fmt.Errorf("%s: select token: %w", op, err)
	}

	return token, nil
}

func (s *Storage) CreateMessage(ctx context.Context, msg messages.Message) (messages.Message, error) {
	const op = "storage.sqlite.CreateMessage"

	err := s.db.GetContext(
		ctx,
		&msg,
		`INSERT INTO messages (
			direction, from_addr, to_addr, channel_id, provider_message_id,
			chat_id, content_type, body, attach, status,
			reply_to_message_id, is_reply
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, direction, from_addr, to_addr, channel_id,
			provider_message_id, chat_id, content_type, body, attach,
			status, reply_to_message_id, is_reply, created_at`,
		msg.Direction, msg.From, msg.To, msg.ChannelID, msg.ProviderMessageID,
		msg.ChatID, msg.ContentType, msg.Body, msg.Attach, msg.Status,
		msg.ReplyToMessageID, msg.IsReply,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return messages.Message{}, fmt.Errorf("%s: %w", op, messages.ErrDuplicateProviderID)
		}
		return messages.Message{}, fmt.Errorf("%s: insert message: %w", op, err)
	}

	return msg, nil
}

func (s *Storage) GetMessageByProviderMessageID(ctx context.Context, providerMessageID string) (messages.Message, error) {
	const op = "storage.sqlite.GetMessageByProviderMessageID"

	var msg messages.Message
	err := s.db.GetContext(
		ctx,
		&msg,
		`SELECT id, direction, from_addr, to_addr, channel_id,
			provider_message_id, chat_id, content_type, body, attach,
			status, reply_to_message_id, is_reply, created_at
		FROM messages
		WHERE provider_message_id = ?`,
		providerMessageID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return messages.Message{}, fmt.Errorf("%s: %w", op, messages.ErrMessageNotFound)
		}
		return messages.Message{}, fmt.Errorf("%s: select message: %w", op, err)
	}

	return msg, nil
}

func (s *Storage) UpdateMessageStatusByProviderMessageID(ctx context.Context, providerMessageID string, status messages.Status) error {
	const op = "storage.sqlite.UpdateMessageStatusByProviderMessageID"

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE messages SET status = ? WHERE provider_message_id = ?`,
		status, providerMessageID,
	)
	if err != nil {
		return fmt.Errorf("%s: update status: %w", op, err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, messages.ErrMessageNotFound)
	}

	return nil
}

func (s *Storage) SetMessageAttach(ctx context.Context, messageID int64, attach string) error {
	const op = "storage.sqlite.SetMessageAttach"

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE messages SET attach = ? WHERE id = ?`,
		attach, messageID,
	)
	if err != nil {
		return fmt.Errorf("%s: update attach: %w", op, err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, messages.ErrMessageNotFound)
	}

	return nil
}

func (s *Storage) ListMessagesByChatID(ctx context.Context, chatID string) ([]messages.Message, error) {
	const op = "storage.sqlite.ListMessagesByChatID"

	var msgs []messages.Message
	err := s.db.SelectContext(
		ctx,
		&msgs,
		`SELECT id, direction, from_addr, to_addr, channel_id,
			provider_message_id, chat_id, content_type, body, attach,
			status, reply_to_message_id, is_reply, created_at
		FROM messages
		WHERE chat_id = ?
		ORDER BY created_at ASC, id ASC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: select messages: %w", op, err)
	}

	return msgs, nil
}

func (s *Storage) AppendEvent(ctx context.Context, source string, payload []byte) error {
	const op = "storage.sqlite.AppendEvent"

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO event_log (source, payload) VALUES (?, ?)`,
		source, string(payload),
	)
	if err != nil {
		return fmt.Errorf("%s: insert event: %w", op, err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Repos exposes the storage through the per-domain repo interfaces.
func (s *Storage) Channels() channels.Repo { return channelsRepo{s} }
func (s *Storage) Messages() messages.Repo { return messagesRepo{s} }
func (s *Storage) Events() eventlog.Repo   { return eventsRepo{s} }

type channelsRepo struct{ *Storage }

func (r channelsRepo) Create(ctx context.Context, ch channels.Channel) (channels.Channel, error) {
	return r.CreateChannel(ctx, ch)
}

func (r channelsRepo) GetByChannelID(ctx context.Context, channelID string) (channels.Channel, error) {
	return r.GetChannelByChannelID(ctx, channelID)
}

func (r channelsRepo) List(ctx context.Context) ([]channels.Channel, error) {
	return r.ListChannels(ctx)
}

func (r channelsRepo) GetToken(ctx context.Context, channelID string) (string, error) {
	return r.GetChannelToken(ctx, channelID)
}

type messagesRepo struct{ *Storage }

func (r messagesRepo) Create(ctx context.Context, msg messages.Message) (messages.Message, error) {
	return r.CreateMessage(ctx, msg)
}

func (r messagesRepo) GetByProviderMessageID(ctx context.Context, providerMessageID string) (messages.Message, error) {
	return r.GetMessageByProviderMessageID(ctx, providerMessageID)
}

func (r messagesRepo) UpdateStatusByProviderMessageID(ctx context.Context, providerMessageID string, status messages.Status) error {
	return r.UpdateMessageStatusByProviderMessageID(ctx, providerMessageID, status)
}

func (r messagesRepo) SetAttach(ctx context.Context, messageID int64, attach string) error {
	return r.SetMessageAttach(ctx, messageID, attach)
}

func (r messagesRepo) ListByChatID(ctx context.Context, chatID string) ([]messages.Message, error) {
	return r.ListMessagesByChatID(ctx, chatID)
}

type eventsRepo struct{ *Storage }

func (r eventsRepo) Append(ctx context.Context, source string, payload []byte) error {
	return r.AppendEvent(ctx, source, payload)
}
