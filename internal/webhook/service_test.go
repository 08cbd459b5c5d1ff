package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riekert7/whapi-bridge/internal/channels"
	"github.com/riekert7/whapi-bridge/internal/messages"
)

type fakeChannels struct {
	channel channels.Channel
	token   string
	err     error
}

func (f *fakeChannels) Create(_ context.Context, ch channels.Channel) (channels.Channel, error) {
	return ch, nil
}

func (f *fakeChannels) GetByChannelID(_ context.Context, channelID string) (channels.Channel, error) {
	if f.err != nil || channelID != f.channel.ChannelID {
		return channels.Channel{}, channels.ErrChannelNotFound
	}
	return f.channel, nil
}

func (f *fakeChannels) List(_ context.Context) ([]channels.Channel, error) {
	return []channels.Channel{f.channel}, nil
}

func (f *fakeChannels) GetToken(_ context.Context, _ string) (string, error) {
	return f.token, nil
}

type fakeMessages struct {
	created  []messages.Message
	attaches map[int64]string
	statuses map[string]messages.Status
	nextID   int64
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		attaches: map[int64]string{},
		statuses: map[string]messages.Status{},
	}
}

func (f *fakeMessages) Create(_ context.Context, msg messages.Message) (messages.Message, error) {
	f.nextID++
	msg.ID = f.nextID
	f.created = append(f.created, msg)
	return msg, nil
}

func (f *fakeMessages) GetByProviderMessageID(_ context.Context, providerMessageID string) (messages.Message, error) {
	for _, m := range f.created {
		if m.ProviderMessageID != nil && *m.ProviderMessageID == providerMessageID {
			return m, nil
		}
	}
	return messages.Message{}, messages.ErrMessageNotFound
}

func (f *fakeMessages) UpdateStatusByProviderMessageID(_ context.Context, providerMessageID string, status messages.Status) error {
	for i, m := range f.created {
		if m.ProviderMessageID != nil && *m.ProviderMessageID == providerMessageID {
			f.created[i].Status = status
			f.statuses[providerMessageID] = status
			return nil
		}
	}
	return messages.ErrMessageNotFound
}

func (f *fakeMessages) SetAttach(_ context.Context, messageID int64, attach string) error {
	f.attaches[messageID] = attach
	for i, m := range f.created {
		if m.ID == messageID {
			f.created[i].Attach = attach
		}
	}
	return nil
}

func (f *fakeMessages) ListByChatID(_ context.Context, chatID string) ([]messages.Message, error) {
	var out []messages.Message
	for _, m := range f.created {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeEvents struct {
	appended [][]byte
	err      error
}

func (f *fakeEvents) Append(_ context.Context, _ string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, payload)
	return nil
}

type fakeFetcher struct {
	data map[string][]byte
	err  error
}

func (f *fakeFetcher) FetchMedia(_ context.Context, _, _, mediaID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.data[mediaID]
	if !ok {
		return nil, errors.New("media not found")
	}
	return data, nil
}

type fakeMediaStore struct {
	saved map[string][]byte
	err   error
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{saved: map[string][]byte{}}
}

func (f *fakeMediaStore) Save(_ context.Context, filename, _ string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved[filename] = data
	return "/files/" + filename, nil
}

type env struct {
	svc      *Service
	channels *fakeChannels
	messages *fakeMessages
	events   *fakeEvents
	fetcher  *fakeFetcher
	media    *fakeMediaStore
}

func newEnv() *env {
	e := &env{
		channels: &fakeChannels{
			channel: channels.Channel{
				ID:          1,
				ChannelID:   "CHAN-1",
				PhoneNumber: "27820000000",
				APIURL:      "https://gate.example",
			},
			token: "secret-token",
		},
		messages: newFakeMessages(),
		events:   &fakeEvents{},
		fetcher:  &fakeFetcher{data: map[string][]byte{}},
		media:    newFakeMediaStore(),
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	e.svc = New(e.channels, e.messages, e.events, e.fetcher, e.media, nil, log)

	return e
}

func TestIngest_TextMessageRoundTrip(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.1",
			"type": "text",
			"chat_id": "27821111111@s.whatsapp.net",
			"from": "27821111111",
			"from_me": false,
			"text": {"body": "hello there"}
		}]
	}`))

	require.Len(t, e.messages.created, 1)

	msg := e.messages.created[0]
	assert.Equal(t, messages.DirectionIncoming, msg.Direction)
	assert.Equal(t, messages.ContentTypeText, msg.ContentType)
	assert.Equal(t, "hello there", msg.Body)
	assert.Equal(t, "27821111111", msg.From)
	assert.Equal(t, "27820000000", msg.To)
	assert.Equal(t, "CHAN-1", msg.ChannelID)
	assert.Equal(t, "27821111111@s.whatsapp.net", msg.ChatID)
	require.NotNil(t, msg.ProviderMessageID)
	assert.Equal(t, "wamid.1", *msg.ProviderMessageID)
	assert.False(t, msg.IsReply)
}

func TestIngest_FromMeIsSkipped(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.2",
			"type": "text",
			"from_me": true,
			"text": {"body": "self echo"}
		}]
	}`))

	assert.Empty(t, e.messages.created)
}

func TestIngest_ReactionMessage(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.3",
			"type": "action",
			"from": "27821111111",
			"action": {"type": "reaction", "emoji": "👍"}
		}]
	}`))

	require.Len(t, e.messages.created, 1)
	assert.Equal(t, messages.ContentTypeReaction, e.messages.created[0].ContentType)
	assert.Equal(t, "👍", e.messages.created[0].Body)
}

func TestIngest_ReplyContext(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.4",
			"type": "text",
			"from": "27821111111",
			"text": {"body": "replying"},
			"context": {"quoted_id": "wamid.0"}
		}]
	}`))

	require.Len(t, e.messages.created, 1)
	msg := e.messages.created[0]
	assert.True(t, msg.IsReply)
	require.NotNil(t, msg.ReplyToMessageID)
	assert.Equal(t, "wamid.0", *msg.ReplyToMessageID)
}

func TestIngest_MediaFetchFailureSkipsMessage(t *testing.T) {
	e := newEnv()
	e.fetcher.err = errors.New("gateway down")

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.5",
			"type": "image",
			"from": "27821111111",
			"image": {"id": "media-1", "mime": "image/jpeg"}
		}]
	}`))

	assert.Empty(t, e.messages.created)
	assert.Empty(t, e.media.saved)
}

func TestIngest_MediaMessageCreatedAndLinked(t *testing.T) {
	e := newEnv()
	e.fetcher.data["media-1"] = []byte("jpeg-bytes")

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.6",
			"type": "image",
			"chat_id": "27821111111@s.whatsapp.net",
			"from": "27821111111",
			"image": {"id": "media-1", "mime": "image/jpeg", "caption": "look at this"}
		}]
	}`))

	require.Len(t, e.messages.created, 1)
	require.Len(t, e.media.saved, 1)

	msg := e.messages.created[0]
	assert.Equal(t, messages.ContentTypeImage, msg.ContentType)
	assert.Equal(t, "look at this", msg.Body)

	attach, ok := e.messages.attaches[msg.ID]
	require.True(t, ok, "attach must be linked after media save")
	assert.Equal(t, msg.Attach, attach)

	for filename, data := range e.media.saved {
		assert.Equal(t, "/files/"+filename, attach)
		assert.Equal(t, []byte("jpeg-bytes"), data)
	}
}

func TestIngest_MediaWithoutCaptionUsesFileReference(t *testing.T) {
	e := newEnv()
	e.fetcher.data["media-2"] = []byte("pdf-bytes")

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.7",
			"type": "document",
			"from": "27821111111",
			"document": {"id": "media-2", "mime": "application/pdf"}
		}]
	}`))

	require.Len(t, e.messages.created, 1)
	assert.Contains(t, e.messages.created[0].Body, "/files/")
}

func TestIngest_UnknownTypeFallback(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{
			"id": "wamid.8",
			"type": "location",
			"from": "27821111111",
			"location": "-33.92,18.42"
		}]
	}`))

	require.Len(t, e.messages.created, 1)
	assert.Equal(t, messages.ContentType("location"), e.messages.created[0].ContentType)
	assert.Equal(t, "-33.92,18.42", e.messages.created[0].Body)
}

func TestIngest_OneBadMessageDoesNotStopTheBatch(t *testing.T) {
	e := newEnv()
	e.fetcher.err = errors.New("gateway down")

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [
			{"id": "wamid.9", "type": "image", "from": "a", "image": {"id": "m", "mime": "image/png"}},
			{"id": "wamid.10", "type": "text", "from": "b", "text": {"body": "still here"}}
		]
	}`))

	require.Len(t, e.messages.created, 1)
	assert.Equal(t, "still here", e.messages.created[0].Body)
}

func TestIngest_StatusUpdateMatchesByProviderID(t *testing.T) {
	e := newEnv()

	id1, id2 := "wamid.out.1", "wamid.out.2"
	e.messages.created = []messages.Message{
		{ID: 1, ProviderMessageID: &id1, Status: messages.StatusPending},
		{ID: 2, ProviderMessageID: &id2, Status: messages.StatusPending},
	}
	e.messages.nextID = 2

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"statuses": [{"id": "wamid.out.1", "status": "delivered"}]
	}`))

	assert.Equal(t, messages.Status("delivered"), e.messages.created[0].Status)
	assert.Equal(t, messages.StatusPending, e.messages.created[1].Status)
}

func TestIngest_StatusForUnknownMessageIsIgnored(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"statuses": [{"id": "wamid.ghost", "status": "read"}]
	}`))

	assert.Empty(t, e.messages.statuses)
}

func TestIngest_UnknownChannelStillAuditsPayload(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "NOPE",
		"messages": [{"id": "wamid.11", "type": "text", "text": {"body": "lost"}}]
	}`))

	assert.Len(t, e.events.appended, 1)
	assert.Empty(t, e.messages.created)
}

func TestIngest_MissingChannelIDStillAuditsPayload(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`{"messages": []}`))

	assert.Len(t, e.events.appended, 1)
	assert.Empty(t, e.messages.created)
}

func TestIngest_AuditFailureDoesNotStopProcessing(t *testing.T) {
	e := newEnv()
	e.events.err = errors.New("log table gone")

	e.svc.Ingest(context.Background(), []byte(`{
		"channel_id": "CHAN-1",
		"messages": [{"id": "wamid.12", "type": "text", "from": "a", "text": {"body": "hi"}}]
	}`))

	require.Len(t, e.messages.created, 1)
}

func TestIngest_InvalidJSONStillAudited(t *testing.T) {
	e := newEnv()

	e.svc.Ingest(context.Background(), []byte(`not json at all`))

	assert.Len(t, e.events.appended, 1)
	assert.Empty(t, e.messages.created)
}
