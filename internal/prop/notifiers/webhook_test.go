package notifiers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"cosmoray/internal/prop"
)

func TestWebhookNotifierPostsEvent(t *testing.T) {
	var mu sync.Mutex
	var gotBody []byte
	var gotContentType, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("hook", srv.URL)
	n.SetHeader("Authorization", "Bearer token")

	event := prop.Event{
		CandidateSerial: "abc",
		ParticleID:      1000010010,
		Tags:            map[string]string{"Rejected": "MinimumEnergy"},
	}
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotAuth != "Bearer token" {
		t.Errorf("authorization header = %q", gotAuth)
	}

	var decoded prop.Event
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("decoding posted body: %v", err)
	}
	if decoded.CandidateSerial != "abc" || decoded.Tags["Rejected"] != "MinimumEnergy" {
		t.Errorf("posted event = %+v", decoded)
	}
}

func TestWebhookNotifierNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("hook", srv.URL)
	if err := n.Notify(context.Background(), prop.Event{CandidateSerial: "x"}); err == nil {
		t.Fatalf("500 response should be an error")
	}
}

func TestWebhookNotifierUnreachable(t *testing.T) {
	n := NewWebhookNotifier("hook", "http://127.0.0.1:1/hook")
	if err := n.Notify(context.Background(), prop.Event{CandidateSerial: "x"}); err == nil {
		t.Fatalf("unreachable server should be an error")
	}
}

func TestWebhookNotifierIdentity(t *testing.T) {
	n := NewWebhookNotifier("hook", "http://example.invalid")
	if n.ID() != "hook" || n.Type() != "webhook" {
		t.Errorf("identity = %q/%q", n.ID(), n.Type())
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
