package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeService struct {
	name  string
	calls []string
	fail  bool
}

func (f *fakeService) Send(ctx context.Context, title, message string) error {
	f.calls = append(f.calls, title+"|"+message)
	if f.fail {
		return errors.New("fail")
	}
	return nil
}

func (f *fakeService) Name() string { return f.name }

func TestMultiNotifierSend(t *testing.T) {
	oldSleep := sleepHook
	sleepHook = func(time.Duration) {}
	defer func() { sleepHook = oldSleep }()

	m := NewMultiNotifier()
	s1 := &fakeService{name: "s1"}
	s2 := &fakeService{name: "s2", fail: true}
	m.Add(s1)
	m.Add(s2)
	m.Send(context.Background(), "title", "msg")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if len(s1.calls) != 1 {
		t.Fatalf("expected s1 to be called once, got %v", s1.calls)
	}
	if len(s2.calls) != notifierMaxRetries {
		t.Fatalf("expected s2 to be retried %d times, got %v", notifierMaxRetries, s2.calls)
	}
}

func TestMultiNotifierCooldown(t *testing.T) {
	m := NewMultiNotifier()
	m.SetCooldown(time.Hour)
	s := &fakeService{name: "s"}
	m.Add(s)

	m.Send(context.Background(), "first", "msg")
	waitAll(t, m)
	m.Send(context.Background(), "second", "msg")
	waitAll(t, m)

	if len(s.calls) != 1 {
		t.Fatalf("expected second send to be suppressed by cooldown, got %v", s.calls)
	}
}

func waitAll(t *testing.T, m *MultiNotifier) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
}

func TestTelegramSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if !strings.HasPrefix(r.URL.Path, "/botTOKEN/sendMessage") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload["chat_id"] != "42" {
			t.Errorf("unexpected chat_id %q", payload["chat_id"])
		}
		if !strings.Contains(payload["text"], "bot updated") {
			t.Errorf("unexpected text %q", payload["text"])
		}
	}))
	defer server.Close()

	oldBase := telegramAPIBase
	telegramAPIBase = server.URL
	defer func() { telegramAPIBase = oldBase }()

	tg := &Telegram{BotToken: "TOKEN", ChatID: "42"}
	if err := tg.Send(context.Background(), "bot updated", "all steps succeeded"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
}

func TestGenericSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	g := &Generic{WebhookURL: server.URL}
	if err := g.Send(context.Background(), "t", "m"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestSlackSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if !strings.HasPrefix(payload["text"], "*update failed*") {
			t.Errorf("unexpected payload: %v", payload)
		}
	}))
	defer server.Close()

	s := &Slack{WebhookURL: server.URL}
	if err := s.Send(context.Background(), "update failed", "pull step errored"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
}
