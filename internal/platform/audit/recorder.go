package audit

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"alidayu/internal/engine/gateway"
	"alidayu/internal/pkg/metrics"
	"alidayu/internal/platform/models"
	"alidayu/internal/platform/repositories"
)

// Outcomes used as the metrics label.
const (
	OutcomeOK             = "ok"
	OutcomeRemoteError    = "remote_error"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeInvalid        = "invalid"
	OutcomeMisconfigured  = "misconfigured"
	OutcomeInternal       = "internal_error"
)

type Entry struct {
	ClientID string
	Method   string
	Receiver string
	Response gateway.Response
	Err      error
	Duration time.Duration
}

// Recorder writes every relayed call to the dispatch log and metrics.
type Recorder struct {
	repo    *repositories.DispatchRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewRecorder(repo *repositories.DispatchRepository, m *metrics.Metrics, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, metrics: m, logger: logger}
}

func (r *Recorder) Record(e Entry) *models.Dispatch {
	outcome, message := Classify(e.Method, e.Response, e.Err)

	d := &models.Dispatch{
		ClientID: e.ClientID,
		Method:   e.Method,
		Receiver: e.Receiver,
		Status:   models.DispatchSent,
		Error:    message,
	}
	if outcome != OutcomeOK {
		d.Status = models.DispatchFailed
	}
	if e.Response != nil {
		// Send and call replies carry the receipt id in result.model.
		if e.Method == gateway.MethodSMSSend || e.Method == gateway.MethodTTSSingleCall {
			d.BizID = e.Response.String(gateway.ResponseKey(e.Method), "result", "model")
		}
		if raw, err := json.Marshal(e.Response); err == nil {
			d.Response = raw
		}
	}

	if r.metrics != nil {
		r.metrics.ObserveCall(e.Method, outcome, e.Duration)
	}

	if err := r.repo.Create(d); err != nil {
		r.logger.Error().Err(err).Str("method", e.Method).Msg("failed to record dispatch")
	}

	ev := r.logger.Info()
	if outcome != OutcomeOK {
		ev = r.logger.Warn().Str("error", message)
	}
	ev.Str("dispatch_id", d.ID).
		Str("client_id", e.ClientID).
		Str("method", e.Method).
		Str("outcome", outcome).
		Dur("duration", e.Duration).
		Msg("gateway call")

	return d
}

// Classify maps a call result onto an outcome and a human readable error.
// Remote failures arrive either as error_response or as a result whose
// success flag is false.
func Classify(method string, resp gateway.Response, err error) (string, string) {
	if err != nil {
		var tErr *gateway.TransportError
		var dErr *gateway.DecodeError
		var cErr *gateway.ConfigurationError
		switch {
		case errors.As(err, &tErr):
			return OutcomeTransportError, err.Error()
		case errors.As(err, &dErr):
			return OutcomeDecodeError, err.Error()
		case errors.As(err, &cErr):
			return OutcomeMisconfigured, err.Error()
		case errors.Is(err, gateway.ErrInvalidRequest):
			return OutcomeInvalid, err.Error()
		}
		return OutcomeInternal, err.Error()
	}

	if _, ok := resp.Lookup("error_response"); ok {
		msg := resp.String("error_response", "sub_msg")
		if msg == "" {
			msg = resp.String("error_response", "msg")
		}
		if code := resp.String("error_response", "sub_code"); code != "" {
			msg = code + ": " + msg
		}
		return OutcomeRemoteError, msg
	}

	key := gateway.ResponseKey(method)
	if success := resp.String(key, "result", "success"); success == "false" {
		return OutcomeRemoteError, resp.String(key, "result", "err_code") + ": " + resp.String(key, "result", "msg")
	}
	return OutcomeOK, ""
}
