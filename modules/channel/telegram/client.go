// Package telegram implements the Telegram Bot API channel for xinyong.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

const (
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20 // prevent unbounded reads from API responses
)

// Client is a thin HTTP wrapper around the Telegram Bot API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Telegram Bot API client.
func NewClient(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// do sends a JSON POST request to the given Bot API method and decodes the response.
// It handles 429 rate limiting with Retry-After (max 3 retries, exponential backoff).
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	backoff := initialBackoff

	for attempt := range maxRetries {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
		if err != nil {
			return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
		}

		// Handle rate limiting with retry.
		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			var apiResp APIResponse[json.RawMessage]
			if err := json.Unmarshal(respBody, &apiResp); err == nil && apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
				backoff = time.Duration(apiResp.Parameters.RetryAfter) * time.Second
			}

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2

			// Re-create body reader for retry.
			if payload != nil {
				data, _ := json.Marshal(payload)
				body = bytes.NewReader(data)
			}
			continue
		}

		var apiResp APIResponse[T]
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, fmt.Errorf("telegram: decode %s response: %w", method, err)
		}

		if !apiResp.OK {
			apiErr := &APIError{
				Code:        apiResp.ErrorCode,
				Description: apiResp.Description,
			}
			if apiResp.Parameters != nil {
				apiErr.RetryAfter = apiResp.Parameters.RetryAfter
			}
			return nil, apiErr
		}

		return &apiResp.Result, nil
	}

	// Unreachable under normal flow, but satisfy the compiler.
	return nil, fmt.Errorf("telegram: %s: max retries exceeded", method)
}

// doMultipart sends a multipart/form-data POST request to the given Bot API
// method and decodes the response. It is used for methods that upload raw file
// bytes instead of referencing a file_id. Uploads are not retried on 429: the
// caller decides whether a fresh render is worth re-sending.
func doMultipart[T any](ctx context.Context, c *Client, method string, fields map[string]string, fileField, fileName string, file []byte) (*T, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("telegram: encode %s field %q: %w", method, name, err)
		}
	}
	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, fmt.Errorf("telegram: encode %s file part: %w", method, err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("telegram: encode %s file part: %w", method, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("telegram: finalize %s body: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var apiResp APIResponse[T]
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response: %w", method, err)
	}

	if !apiResp.OK {
		apiErr := &APIError{
			Code:        apiResp.ErrorCode,
			Description: apiResp.Description,
		}
		if apiResp.Parameters != nil {
			apiErr.RetryAfter = apiResp.Parameters.RetryAfter
		}
		return nil, apiErr
	}

	return &apiResp.Result, nil
}

// GetUpdatesRequest is the request body for the getUpdates method.
type GetUpdatesRequest struct {
	Offset         int      `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SetWebhookRequest is the request body for the setWebhook method.
type SetWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
	MaxConnections int      `json:"max_connections,omitempty"`
}

// SendMessageRequest is the request body for the sendMessage method.
type SendMessageRequest struct {
	ChatID              int64  `json:"chat_id"`
	Text                string `json:"text"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
	ReplyToMessageID    int    `json:"reply_to_message_id,omitempty"`
	MessageThreadID     int    `json:"message_thread_id,omitempty"`
}

// SendStickerRequest describes a sendSticker upload. The sticker bytes travel
// as a multipart file part, everything else as plain form fields.
type SendStickerRequest struct {
	ChatID              int64
	Sticker             []byte
	DisableNotification bool
	ReplyToMessageID    int
	MessageThreadID     int
}

// answerInlineQueryRequest is the request body for the answerInlineQuery method.
type answerInlineQueryRequest struct {
	InlineQueryID string                           `json:"inline_query_id"`
	Results       []InlineQueryResultCachedSticker `json:"results"`
	CacheTime     int                              `json:"cache_time,omitempty"`
}

// GetMe returns the bot's user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return do[User](ctx, c, "getMe", nil)
}

// GetUpdates fetches incoming updates using long polling.
func (c *Client) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]Update, error) {
	result, err := do[[]Update](ctx, c, "getUpdates", req)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// SetWebhook configures the webhook URL for receiving updates.
func (c *Client) SetWebhook(ctx context.Context, req SetWebhookRequest) error {
	_, err := do[bool](ctx, c, "setWebhook", req)
	return err
}

// DeleteWebhook removes the current webhook integration.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := do[bool](ctx, c, "deleteWebhook", nil)
	return err
}

// SendMessage sends a text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	return do[Message](ctx, c, "sendMessage", req)
}

// SendSticker uploads a WEBP sticker to the specified chat. The returned
// Message carries the file_id Telegram assigned to the upload, which can be
// referenced in inline results without sending the bytes again.
func (c *Client) SendSticker(ctx context.Context, req SendStickerRequest) (*Message, error) {
	fields := map[string]string{
		"chat_id": strconv.FormatInt(req.ChatID, 10),
	}
	if req.DisableNotification {
		fields["disable_notification"] = "true"
	}
	if req.ReplyToMessageID != 0 {
		fields["reply_to_message_id"] = strconv.Itoa(req.ReplyToMessageID)
	}
	if req.MessageThreadID != 0 {
		fields["message_thread_id"] = strconv.Itoa(req.MessageThreadID)
	}
	return doMultipart[Message](ctx, c, "sendSticker", fields, "sticker", "sticker.webp", req.Sticker)
}

// AnswerInlineQuery answers an inline query with cached sticker results.
// A nil results slice is sent as an empty answer, which dismisses the
// client-side spinner without offering anything.
func (c *Client) AnswerInlineQuery(ctx context.Context, queryID string, results []InlineQueryResultCachedSticker, cacheTime int) error {
	if results == nil {
		// Telegram requires the results field to be present, so send [] not null.
		results = []InlineQueryResultCachedSticker{}
	}
	_, err := do[bool](ctx, c, "answerInlineQuery", answerInlineQueryRequest{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     cacheTime,
	})
	return err
}
