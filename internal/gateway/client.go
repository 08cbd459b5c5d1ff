package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the Whapi cloud gateway. The bearer token is supplied per
// call by the owning channel, never held by the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SendMessage posts a provider payload to POST {base}/messages/{contentType}.
// Non-2xx responses are decoded into *APIError.
func (c *Client) SendMessage(ctx context.Context, token, contentType string, payload SendPayload) (SendResult, error) {
	const op = "gateway.SendMessage"

	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{}, fmt.Errorf("%s: marshal payload: %w", op, err)
	}

	url := fmt.Sprintf("%s/messages/%s", c.baseURL, contentType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("%s: create request: %w", op, err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("%s: send request: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return SendResult{}, fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return SendResult{}, fmt.Errorf("%s: %w", op, decodeAPIError(resp.StatusCode, respBody))
	}

	var result sendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return SendResult{}, fmt.Errorf("%s: unmarshal response: %w", op, err)
	}

	return SendResult{
		MessageID: result.Message.ID,
		Status:    result.Message.Status,
	}, nil
}

// FetchMedia downloads media bytes from GET {apiURL}/media/{mediaID} using
// the channel's bearer token. Any status other than 200 is an error.
func (c *Client) FetchMedia(ctx context.Context, apiURL, token, mediaID string) ([]byte, error) {
	const op = "gateway.FetchMedia"

	url := fmt.Sprintf("%s/media/%s", apiURL, mediaID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d for media %s", op, resp.StatusCode, mediaID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	return data, nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Message = errResp.Error.Message
		if apiErr.Message == "" {
			apiErr.Message = errResp.Error.LegacyError
		}
		apiErr.UserTitle = errResp.Error.UserTitle
	}

	if apiErr.Message == "" {
		apiErr.Message = string(body)
	}

	return apiErr
}
