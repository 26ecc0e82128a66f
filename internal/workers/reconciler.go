package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"alidayu/internal/engine/gateway"
	"alidayu/internal/pkg/metrics"
	"alidayu/internal/platform/config"
	"alidayu/internal/platform/models"
	"alidayu/internal/platform/repositories"
)

// Delivery states reported in sms_status. 1 means still sending.
const (
	smsFailed    = "2"
	smsDelivered = "3"
)

// The gateway keeps send records for 30 days.
const recordRetention = 30 * 24 * time.Hour

type SMSQuerier interface {
	QuerySMS(ctx context.Context, q gateway.SMSQuery) (gateway.Response, error)
	Location() *time.Location
}

// Notifier is told about every dispatch that changed state.
type Notifier interface {
	Notify(ctx context.Context, d *models.Dispatch)
}

// Reconciler moves sent SMS dispatches to delivered or undelivered by
// querying the gateway's delivery records.
type Reconciler struct {
	repo     *repositories.DispatchRepository
	gateway  SMSQuerier
	metrics  *metrics.Metrics
	notifier Notifier
	cfg      config.WorkerConfig
	logger   zerolog.Logger

	now        func() time.Time
	newBackOff func() backoff.BackOff
}

// NewReconciler builds a reconciler. notifier may be nil.
func NewReconciler(repo *repositories.DispatchRepository, gw SMSQuerier, m *metrics.Metrics, notifier Notifier, cfg config.WorkerConfig, logger zerolog.Logger) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Reconciler{
		repo:     repo,
		gateway:  gw,
		metrics:  m,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Run reconciles once immediately and then every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		n, err := r.RunOnce(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("reconciliation pass failed")
		} else if n > 0 {
			r.logger.Info().Int("reconciled", n).Msg("reconciliation pass complete")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce reconciles one batch and returns how many dispatches changed state.
// Dispatches left pending are stamped as checked so the next batch starts
// with ones that have waited longest.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	before := r.now().Add(-r.cfg.MinAge).Unix()
	pending, err := r.repo.ListPendingSMS(gateway.MethodSMSSend, before, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending dispatches: %w", err)
	}

	var reconciled int
	for _, d := range pending {
		if ctx.Err() != nil {
			return reconciled, ctx.Err()
		}

		status, raw, qerr := r.reconcile(ctx, d)
		switch {
		case errors.Is(qerr, gateway.ErrInvalidRequest):
			// The stored receiver or biz id can never form a valid query.
			r.logger.Warn().Err(qerr).Str("dispatch_id", d.ID).Msg("dispatch cannot be queried")
			status, raw = models.DispatchUnknown, nil
		case qerr != nil:
			if ctx.Err() != nil {
				return reconciled, ctx.Err()
			}
			r.logger.Warn().Err(qerr).Str("dispatch_id", d.ID).Msg("failed to query delivery status")
		}

		if status == "" {
			if err := r.repo.MarkChecked(d.ID, r.now().Unix()); err != nil {
				return reconciled, fmt.Errorf("mark dispatch %s checked: %w", d.ID, err)
			}
			continue
		}

		if err := r.repo.MarkReconciled(d.ID, status, raw); err != nil {
			return reconciled, fmt.Errorf("mark dispatch %s: %w", d.ID, err)
		}
		if r.metrics != nil {
			r.metrics.Reconciled.WithLabelValues(status).Inc()
		}
		if r.notifier != nil {
			reconciledAt := r.now().Unix()
			d.Status, d.Response, d.ReconciledAt = status, raw, &reconciledAt
			r.notifier.Notify(ctx, d)
		}
		r.logger.Debug().Str("dispatch_id", d.ID).Str("status", status).Msg("dispatch reconciled")
		reconciled++
	}
	return reconciled, nil
}

// reconcile queries every receiver of d. An empty status means the message
// is still in flight. Dispatches older than the gateway's retention are
// unknown without a query.
func (r *Reconciler) reconcile(ctx context.Context, d *models.Dispatch) (string, []byte, error) {
	if r.now().Sub(time.Unix(d.CreatedAt, 0)) > recordRetention {
		return models.DispatchUnknown, nil, nil
	}

	sentAt := time.Unix(d.CreatedAt, 0).In(r.gateway.Location())

	var states []string
	replies := make(map[string]gateway.Response)
	for _, receiver := range strings.Split(d.Receiver, ",") {
		if receiver == "" {
			continue
		}

		resp, err := r.query(ctx, gateway.SMSQuery{
			ReceiverNumber: receiver,
			QueryDate:      sentAt,
			BizID:          d.BizID,
		})
		if err != nil {
			return "", nil, err
		}
		replies[receiver] = resp
		states = append(states, deliveryState(resp))
	}

	status := aggregate(states)
	if status == "" {
		return "", nil, nil
	}

	raw, err := json.Marshal(replies)
	if err != nil {
		return "", nil, err
	}
	return status, raw, nil
}

func (r *Reconciler) query(ctx context.Context, q gateway.SMSQuery) (gateway.Response, error) {
	var resp gateway.Response
	op := func() error {
		var err error
		resp, err = r.gateway.QuerySMS(ctx, q)
		if errors.Is(err, gateway.ErrInvalidRequest) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		if _, ok := resp.Lookup("error_response"); ok {
			return backoff.Permanent(fmt.Errorf("gateway rejected query: %s %s",
				resp.String("error_response", "sub_code"), resp.String("error_response", "msg")))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.cfg.MaxAttempts-1)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return resp, nil
}

// deliveryState reads sms_status from the first detail record. Records come
// back as a list in JSON and as a single object when XML holds one entry.
func deliveryState(resp gateway.Response) string {
	v, ok := resp.Lookup(gateway.ResponseKey(gateway.MethodSMSQuery), "values", "fc_partner_sms_detail_dto")
	if !ok {
		return ""
	}
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	record, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	return gateway.Response(record).String("sms_status")
}

// aggregate folds per receiver states: any in flight keeps the dispatch
// pending, any failure makes it undelivered.
func aggregate(states []string) string {
	if len(states) == 0 {
		return ""
	}
	undelivered := false
	for _, s := range states {
		switch s {
		case smsDelivered:
		case smsFailed:
			undelivered = true
		default:
			return ""
		}
	}
	if undelivered {
		return models.DispatchUndelivered
	}
	return models.DispatchDelivered
}
