package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

// fakeRenderer returns canned sticker bytes and records requested amounts.
type fakeRenderer struct {
	mu      sync.Mutex
	data    []byte
	err     error
	amounts []int64
}

func (f *fakeRenderer) Render(_ context.Context, amount int64) ([]byte, error) {
	f.mu.Lock()
	f.amounts = append(f.amounts, amount)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeRenderer) rendered() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.amounts...)
}

// stickerUpload captures one multipart sendSticker call.
type stickerUpload struct {
	ChatID           string
	ReplyToMessageID string
	Data             []byte
}

// recordedAnswer captures one answerInlineQuery call.
type recordedAnswer struct {
	QueryID   string
	CacheTime int
	Results   []InlineQueryResultCachedSticker
}

// stickerAPIServer is an httptest-backed Bot API stub that records sticker
// uploads, inline answers and text messages. Each uploaded sticker is
// assigned the file_id "file-<n>" in upload order.
type stickerAPIServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	uploads  []stickerUpload
	answers  []recordedAnswer
	messages []SendMessageRequest
}

func newStickerAPIServer(t *testing.T) *stickerAPIServer {
	t.Helper()
	s := &stickerAPIServer{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendSticker"):
			if err := r.ParseMultipartForm(4 << 20); err != nil {
				t.Errorf("parse sendSticker form: %v", err)
				http.Error(w, "bad form", http.StatusBadRequest)
				return
			}
			file, _, err := r.FormFile("sticker")
			if err != nil {
				t.Errorf("sendSticker file part: %v", err)
				http.Error(w, "missing file", http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(file)
			_ = file.Close()

			s.mu.Lock()
			s.uploads = append(s.uploads, stickerUpload{
				ChatID:           r.FormValue("chat_id"),
				ReplyToMessageID: r.FormValue("reply_to_message_id"),
				Data:             data,
			})
			n := len(s.uploads)
			s.mu.Unlock()

			writeJSON(t, w, APIResponse[Message]{
				OK: true,
				Result: Message{
					MessageID: 1000 + n,
					Chat:      Chat{ID: 1, Type: "private"},
					Sticker: &Sticker{
						FileID: fmt.Sprintf("file-%d", n),
						Width:  512,
						Height: 174,
					},
				},
			})

		case strings.HasSuffix(r.URL.Path, "/answerInlineQuery"):
			body, _ := io.ReadAll(r.Body)
			var req answerInlineQueryRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("unmarshal answerInlineQuery: %v", err)
			}
			s.mu.Lock()
			s.answers = append(s.answers, recordedAnswer{
				QueryID:   req.InlineQueryID,
				CacheTime: req.CacheTime,
				Results:   req.Results,
			})
			s.mu.Unlock()
			writeJSON(t, w, APIResponse[bool]{OK: true, Result: true})

		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			body, _ := io.ReadAll(r.Body)
			var req SendMessageRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("unmarshal sendMessage: %v", err)
			}
			s.mu.Lock()
			s.messages = append(s.messages, req)
			s.mu.Unlock()
			writeJSON(t, w, APIResponse[Message]{
				OK: true,
				Result: Message{
					MessageID: 99,
					Chat:      Chat{ID: req.ChatID, Type: "private"},
					Text:      req.Text,
				},
			})

		default:
			t.Logf("unexpected API call: %s", r.URL.Path)
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stickerAPIServer) client() *Client {
	return NewClient("TOKEN", s.srv.URL)
}

func (s *stickerAPIServer) recordedUploads() []stickerUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stickerUpload(nil), s.uploads...)
}

func (s *stickerAPIServer) recordedAnswers() []recordedAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedAnswer(nil), s.answers...)
}

func (s *stickerAPIServer) recordedMessages() []SendMessageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendMessageRequest(nil), s.messages...)
}
