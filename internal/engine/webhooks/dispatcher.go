package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"alidayu/internal/pkg/validator"
	"alidayu/internal/platform/config"
	"alidayu/internal/platform/models"
)

const EventDispatchReconciled = "dispatch.reconciled"

type Event struct {
	ID        string           `json:"id"`
	Event     string           `json:"event"`
	Timestamp int64            `json:"timestamp"`
	ClientID  string           `json:"client_id"`
	Data      *models.Dispatch `json:"data"`
}

type target struct {
	url    string
	secret string
}

// Dispatcher posts signed delivery notifications to the callback URL of the
// client that sent the message. Clients without a callback are skipped.
type Dispatcher struct {
	targets map[string]target
	client  *http.Client
	logger  zerolog.Logger
}

func NewDispatcher(clients []config.ClientConfig, httpClient *http.Client, logger zerolog.Logger) *Dispatcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	targets := make(map[string]target)
	for _, c := range clients {
		if c.CallbackURL == "" {
			continue
		}
		if err := validator.CallbackURL(c.CallbackURL); err != nil {
			logger.Warn().Err(err).Str("client_id", c.ID).Msg("ignoring client callback")
			continue
		}
		targets[c.ID] = target{url: c.CallbackURL, secret: c.CallbackSecret}
	}
	return &Dispatcher{targets: targets, client: httpClient, logger: logger}
}

// Notify delivers a dispatch.reconciled event for d. Failures are logged;
// the dispatch log stays the source of truth.
func (d *Dispatcher) Notify(ctx context.Context, dispatch *models.Dispatch) {
	t, ok := d.targets[dispatch.ClientID]
	if !ok {
		return
	}

	event := &Event{
		ID:        "evt_" + uuid.NewString(),
		Event:     EventDispatchReconciled,
		Timestamp: time.Now().Unix(),
		ClientID:  dispatch.ClientID,
		Data:      dispatch,
	}

	if err := d.deliver(ctx, t, event); err != nil {
		d.logger.Warn().Err(err).
			Str("dispatch_id", dispatch.ID).
			Str("delivery", event.ID).
			Msg("webhook delivery failed")
		return
	}
	d.logger.Debug().Str("dispatch_id", dispatch.ID).Str("delivery", event.ID).Msg("webhook delivered")
}

func (d *Dispatcher) deliver(ctx context.Context, t target, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Alidayu-Event", event.Event)
	req.Header.Set("X-Alidayu-Delivery", event.ID)
	if t.secret != "" {
		req.Header.Set("X-Alidayu-Signature", Sign(t.secret, payload))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("callback returned HTTP %d", resp.StatusCode)
	}
	return nil
}
