package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload SendPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": {"id": "wamid.42", "status": "sent"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)

	result, err := c.SendMessage(context.Background(), "tok", "text", SendPayload{
		To:   "27821111111",
		Body: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "/messages/text", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "hello", gotPayload.Body)
	assert.Equal(t, "wamid.42", result.MessageID)
	assert.Equal(t, "sent", result.Status)
}

func TestSendMessage_APIError(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantMsg   string
		wantTitle string
	}{
		{
			name:    "message key",
			body:    `{"error": {"message": "invalid recipient", "error_user_title": "Bad request"}}`,
			wantMsg: "invalid recipient", wantTitle: "Bad request",
		},
		{
			name:    "legacy Error key",
			body:    `{"error": {"Error": "token expired"}}`,
			wantMsg: "token expired",
		},
		{
			name:    "unparseable body",
			body:    `gateway exploded`,
			wantMsg: "gateway exploded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, 5*time.Second)

			_, err := c.SendMessage(context.Background(), "tok", "text", SendPayload{To: "x"})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantTitle, apiErr.UserTitle)
		})
	}
}

func TestFetchMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/media/good":
			_, _ = w.Write([]byte("raw-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)

	data, err := c.FetchMedia(context.Background(), srv.URL, "tok", "good")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-bytes"), data)

	_, err = c.FetchMedia(context.Background(), srv.URL, "tok", "missing")
	require.Error(t, err)
}
