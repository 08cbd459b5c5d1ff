package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riekert7/whapi-bridge/internal/channels"
	"github.com/riekert7/whapi-bridge/internal/messages"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestChannels_CreateAndLookup(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	ch, err := s.CreateChannel(ctx, channels.Channel{
		ChannelID:   "CHAN-1",
		PhoneNumber: "27820000000",
		APIURL:      "https://gate.example",
		Token:       "tok",
	})
	require.NoError(t, err)
	assert.NotZero(t, ch.ID)

	got, err := s.GetChannelByChannelID(ctx, "CHAN-1")
	require.NoError(t, err)
	assert.Equal(t, "27820000000", got.PhoneNumber)

	token, err := s.GetChannelToken(ctx, "CHAN-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = s.GetChannelByChannelID(ctx, "NOPE")
	assert.ErrorIs(t, err, channels.ErrChannelNotFound)

	_, err = s.CreateChannel(ctx, channels.Channel{ChannelID: "CHAN-1", Token: "other"})
	assert.ErrorIs(t, err, channels.ErrChannelAlreadyExists)
}

func TestMessages_ProviderIDIsUnique(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	id := "wamid.1"
	_, err := s.CreateMessage(ctx, messages.Message{
		Direction:         messages.DirectionOutgoing,
		ChannelID:         "CHAN-1",
		ContentType:       messages.ContentTypeText,
		Status:            messages.StatusPending,
		ProviderMessageID: &id,
	})
	require.NoError(t, err)

	_, err = s.CreateMessage(ctx, messages.Message{
		Direction:         messages.DirectionIncoming,
		ChannelID:         "CHAN-1",
		ContentType:       messages.ContentTypeText,
		Status:            messages.StatusSuccess,
		ProviderMessageID: &id,
	})
	assert.ErrorIs(t, err, messages.ErrDuplicateProviderID)

	// Messages with no provider id yet do not collide.
	for i := 0; i < 2; i++ {
		_, err := s.CreateMessage(ctx, messages.Message{
			Direction:   messages.DirectionOutgoing,
			ChannelID:   "CHAN-1",
			ContentType: messages.ContentTypeText,
			Status:      messages.StatusPending,
		})
		require.NoError(t, err)
	}
}

func TestMessages_StatusUpdateByProviderID(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	id1, id2 := "wamid.1", "wamid.2"
	_, err := s.CreateMessage(ctx, messages.Message{
		Direction: messages.DirectionOutgoing, ChannelID: "CHAN-1",
		ContentType: messages.ContentTypeText, Status: messages.StatusPending,
		ProviderMessageID: &id1,
	})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, messages.Message{
		Direction: messages.DirectionOutgoing, ChannelID: "CHAN-1",
		ContentType: messages.ContentTypeText, Status: messages.StatusPending,
		ProviderMessageID: &id2,
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateMessageStatusByProviderMessageID(ctx, "wamid.1", "delivered"))

	got, err := s.GetMessageByProviderMessageID(ctx, "wamid.1")
	require.NoError(t, err)
	assert.Equal(t, messages.Status("delivered"), got.Status)

	other, err := s.GetMessageByProviderMessageID(ctx, "wamid.2")
	require.NoError(t, err)
	assert.Equal(t, messages.StatusPending, other.Status, "only the matching message may change")

	err = s.UpdateMessageStatusByProviderMessageID(ctx, "wamid.ghost", "read")
	assert.ErrorIs(t, err, messages.ErrMessageNotFound)
}

func TestMessages_SetAttachAndListByChat(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	id := "wamid.1"
	msg, err := s.CreateMessage(ctx, messages.Message{
		Direction: messages.DirectionIncoming, ChannelID: "CHAN-1",
		ChatID: "chat-1", ContentType: messages.ContentTypeImage,
		Status: messages.StatusSuccess, ProviderMessageID: &id,
	})
	require.NoError(t, err)

	require.NoError(t, s.SetMessageAttach(ctx, msg.ID, "/files/a.jpg"))

	msgs, err := s.ListMessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/files/a.jpg", msgs[0].Attach)

	empty, err := s.ListMessagesByChatID(ctx, "chat-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEventLog_Append(t *testing.T) {
	s := newTestStorage(t)

	err := s.AppendEvent(context.Background(), "webhook", []byte(`{"raw": true}`))
	require.NoError(t, err)
}
