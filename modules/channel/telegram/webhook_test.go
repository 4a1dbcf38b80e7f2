package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/xinyong-bot/xinyong/internal/security"
)

func newWebhookFixture(t *testing.T, secret string) (*WebhookReceiver, *fakeRenderer, *stickerAPIServer) {
	t.Helper()
	srv := newStickerAPIServer(t)
	renderer := &fakeRenderer{data: []byte("webp")}
	handler := NewHandler(srv.client(), renderer, openAllowList(), nil, nil, discardLogger(), Config{
		CacheChatID: -1,
	})
	return NewWebhookReceiver(handler, nil, discardLogger(), secret), renderer, srv
}

func marshalUpdate(t *testing.T, update Update) []byte {
	t.Helper()
	body, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	return body
}

func TestWebhookValidSecret(t *testing.T) {
	wh, renderer, srv := newWebhookFixture(t, "my-secret")

	body := marshalUpdate(t, Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 42,
			From:      &User{ID: 123, Username: "alice"},
			Chat:      Chat{ID: 456, Type: "private"},
			Date:      1700000000,
			Text:      "8000",
		},
	})

	headers := http.Header{}
	headers.Set("X-Telegram-Bot-Api-Secret-Token", "my-secret")

	if err := wh.HandleWebhook(context.TODO(), "telegram", body, headers); err != nil {
		t.Fatalf("HandleWebhook() error: %v", err)
	}
	if got := renderer.rendered(); len(got) != 1 || got[0] != 8000 {
		t.Fatalf("rendered amounts = %v, want [8000]", got)
	}
	if uploads := srv.recordedUploads(); len(uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(uploads))
	}
}

func TestWebhookInvalidSecret(t *testing.T) {
	wh, renderer, _ := newWebhookFixture(t, "my-secret")

	body := marshalUpdate(t, Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 42,
			From:      &User{ID: 123},
			Chat:      Chat{ID: 456, Type: "private"},
			Text:      "8000",
		},
	})

	headers := http.Header{}
	headers.Set("X-Telegram-Bot-Api-Secret-Token", "wrong-secret")

	if err := wh.HandleWebhook(context.TODO(), "telegram", body, headers); err == nil {
		t.Fatal("HandleWebhook() should error with invalid secret")
	}
	if got := renderer.rendered(); len(got) != 0 {
		t.Errorf("rendered amounts = %v, want none", got)
	}
}

func TestWebhookInvalidSecretAudited(t *testing.T) {
	srv := newStickerAPIServer(t)
	handler := NewHandler(srv.client(), &fakeRenderer{}, openAllowList(), nil, nil, discardLogger(), Config{
		CacheChatID: -1,
	})
	var events []security.AuditEvent
	audit := collectAudit(&events)
	wh := NewWebhookReceiver(handler, audit, discardLogger(), "my-secret")

	headers := http.Header{}
	headers.Set("X-Telegram-Bot-Api-Secret-Token", "wrong")

	if err := wh.HandleWebhook(context.TODO(), "telegram", []byte(`{"update_id":1}`), headers); err == nil {
		t.Fatal("HandleWebhook() should error with invalid secret")
	}
	if !hasEventType(events, security.EventWebhookRejected) {
		t.Error("audit log missing webhook_rejected event")
	}
}

func TestWebhookNoSecret(t *testing.T) {
	wh, renderer, _ := newWebhookFixture(t, "")

	body := marshalUpdate(t, Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 42,
			From:      &User{ID: 123},
			Chat:      Chat{ID: 456, Type: "private"},
			Text:      "321",
		},
	})

	// No secret header; accepted when a secret is not configured.
	if err := wh.HandleWebhook(context.TODO(), "telegram", body, http.Header{}); err != nil {
		t.Fatalf("HandleWebhook() error: %v", err)
	}
	if got := renderer.rendered(); len(got) != 1 || got[0] != 321 {
		t.Fatalf("rendered amounts = %v, want [321]", got)
	}
}

func TestWebhookInvalidJSON(t *testing.T) {
	wh, renderer, _ := newWebhookFixture(t, "")

	if err := wh.HandleWebhook(context.TODO(), "telegram", []byte(`{invalid json`), http.Header{}); err == nil {
		t.Fatal("HandleWebhook() should error with invalid JSON")
	}
	if got := renderer.rendered(); len(got) != 0 {
		t.Errorf("rendered amounts = %v, want none", got)
	}
}

func TestWebhookInlineQuery(t *testing.T) {
	wh, renderer, srv := newWebhookFixture(t, "")

	body := marshalUpdate(t, Update{
		UpdateID:    7,
		InlineQuery: &InlineQuery{ID: "wq", From: User{ID: 5}, Query: "250"},
	})

	if err := wh.HandleWebhook(context.TODO(), "telegram", body, http.Header{}); err != nil {
		t.Fatalf("HandleWebhook() error: %v", err)
	}
	if got := renderer.rendered(); len(got) != 1 || got[0] != 250 {
		t.Fatalf("rendered amounts = %v, want [250]", got)
	}
	answers := srv.recordedAnswers()
	if len(answers) != 1 || len(answers[0].Results) != 1 {
		t.Fatalf("answers = %+v, want one answer with one result", answers)
	}
}

func TestWebhookEmptyUpdate(t *testing.T) {
	wh, renderer, _ := newWebhookFixture(t, "")

	body := marshalUpdate(t, Update{UpdateID: 1}) // No message or inline query.

	// Empty update is skipped silently (no error).
	if err := wh.HandleWebhook(context.TODO(), "telegram", body, http.Header{}); err != nil {
		t.Fatalf("HandleWebhook() error: %v (empty updates should be skipped)", err)
	}
	if got := renderer.rendered(); len(got) != 0 {
		t.Errorf("rendered amounts = %v, want none", got)
	}
}
