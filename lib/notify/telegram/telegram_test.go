package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNotify(t *testing.T) {
	var gotPath string

	var gotBody map[string]string

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer mock.Close()

	tg := New("token123", "chat456", time.Second)
	tg.base = mock.URL

	if err := tg.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("err:%v", err)
	}

	if gotPath != "/bottoken123/sendMessage" {
		t.Errorf("path:%s", gotPath)
	}
	if gotBody["chat_id"] != "chat456" || gotBody["text"] != "hello" {
		t.Errorf("body:%v", gotBody)
	}
}

func TestNotifyAPIError(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer mock.Close()

	tg := New("bad", "chat", time.Second)
	tg.base = mock.URL

	if err := tg.Notify(context.Background(), "hello"); err == nil {
		t.Error("expected an error for a non-200 reply")
	}
}

func TestNotifyUnreachable(t *testing.T) {
	tg := New("token", "chat", 100*time.Millisecond)
	tg.base = "http://127.0.0.1:1" // nothing listens here

	if err := tg.Notify(context.Background(), "hello"); err == nil {
		t.Error("expected an error for an unreachable API")
	}
}
