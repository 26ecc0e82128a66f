package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"alidayu/internal/platform/config"
	"alidayu/internal/platform/models"
)

func TestDispatcher_Notify(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)

		if !Verify("hook-secret", body, r.Header.Get("X-Alidayu-Signature")) {
			t.Errorf("Signature did not verify")
		}
		if r.Header.Get("X-Alidayu-Event") != EventDispatchReconciled {
			t.Errorf("Unexpected event header %q", r.Header.Get("X-Alidayu-Event"))
		}

		var event Event
		if err := json.Unmarshal(body, &event); err != nil {
			t.Errorf("Failed to decode event: %v", err)
		}
		if event.Data == nil || event.Data.ID != "dsp_1" || event.Data.Status != models.DispatchDelivered {
			t.Errorf("Unexpected event data %+v", event.Data)
		}
		if event.ID != r.Header.Get("X-Alidayu-Delivery") {
			t.Errorf("Delivery header %q does not match event id %q", r.Header.Get("X-Alidayu-Delivery"), event.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDispatcher([]config.ClientConfig{
		{ID: "billing", CallbackURL: srv.URL, CallbackSecret: "hook-secret"},
		{ID: "silent"},
		{ID: "broken", CallbackURL: "ftp://example.com/cb"},
	}, srv.Client(), zerolog.Nop())

	if _, ok := d.targets["broken"]; ok {
		t.Error("Expected invalid callback URL to be ignored")
	}

	d.Notify(context.Background(), &models.Dispatch{ID: "dsp_1", ClientID: "billing", Status: models.DispatchDelivered})
	d.Notify(context.Background(), &models.Dispatch{ID: "dsp_2", ClientID: "silent", Status: models.DispatchDelivered})

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 callback, got %d", got)
	}
}

func TestDispatcher_DeliverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(nil, srv.Client(), zerolog.Nop())
	err := d.deliver(context.Background(), target{url: srv.URL}, &Event{ID: "evt_1", Event: EventDispatchReconciled})
	if err == nil {
		t.Fatal("Expected error for HTTP 500, got nil")
	}
}
