package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	apiContext "alidayu/internal/api/context"
	"alidayu/internal/engine/gateway"
	"alidayu/internal/pkg/errors"
	"alidayu/internal/platform/audit"
	"alidayu/internal/platform/auth"
)

// Gateway is the subset of *gateway.Client the relay calls.
type Gateway interface {
	BindVirtualNumber(ctx context.Context, req gateway.BindRequest) (gateway.Response, error)
	BindVirtualNumberSecond(ctx context.Context, req gateway.BindSecondRequest) (gateway.Response, error)
	UnbindVirtualNumber(ctx context.Context, subscriptionID string) (gateway.Response, error)
	SendSMS(ctx context.Context, req gateway.SMSRequest) (gateway.Response, error)
	QuerySMS(ctx context.Context, q gateway.SMSQuery) (gateway.Response, error)
	TTSSingleCall(ctx context.Context, req gateway.TTSRequest) (gateway.Response, error)
	Location() *time.Location
}

// GatewayHandler relays SMS, voice and binding requests to the gateway and
// records each call in the dispatch log.
type GatewayHandler struct {
	gateway  Gateway
	recorder *audit.Recorder
}

func NewGatewayHandler(gw Gateway, recorder *audit.Recorder) *GatewayHandler {
	return &GatewayHandler{gateway: gw, recorder: recorder}
}

func (h *GatewayHandler) relay(w http.ResponseWriter, r *http.Request, method, receiver string, call func(ctx context.Context) (gateway.Response, error)) {
	var clientID string
	if claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims); ok {
		clientID = claims.ClientID
	}

	start := time.Now()
	resp, err := call(r.Context())
	d := h.recorder.Record(audit.Entry{
		ClientID: clientID,
		Method:   method,
		Receiver: receiver,
		Response: resp,
		Err:      err,
		Duration: time.Since(start),
	})

	w.Header().Set("X-Dispatch-Id", d.ID)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, resp)
}

func writeGatewayError(w http.ResponseWriter, err error) {
	var tErr *gateway.TransportError
	var dErr *gateway.DecodeError
	var cErr *gateway.ConfigurationError

	switch {
	case stderrors.Is(err, gateway.ErrInvalidRequest):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
	case stderrors.As(err, &tErr):
		var details interface{}
		if tErr.StatusCode != 0 {
			details = map[string]int{"upstream_status": tErr.StatusCode}
		}
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeGateway, err.Error(), details)
	case stderrors.As(err, &dErr):
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeGateway, err.Error(), nil)
	case stderrors.As(err, &cErr):
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeMisconfigured, err.Error(), nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Gateway call failed", nil)
	}
}

func pathParam(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}
