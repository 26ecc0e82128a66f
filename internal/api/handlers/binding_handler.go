package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"alidayu/internal/engine/gateway"
	"alidayu/internal/pkg/errors"
)

type BindRequest struct {
	PhoneA           string    `json:"phone_a"`
	PhoneB           string    `json:"phone_b"`
	EndDate          time.Time `json:"end_date"`
	OtherCallAllowed bool      `json:"other_call_allowed"`
	RecordingEnabled bool      `json:"recording_enabled"`
}

type BindSecondRequest struct {
	PhoneB           string    `json:"phone_b"`
	EndDate          time.Time `json:"end_date"`
	OtherCallAllowed bool      `json:"other_call_allowed"`
	RecordingEnabled bool      `json:"recording_enabled"`
}

func (h *GatewayHandler) Bind(w http.ResponseWriter, r *http.Request) {
	var req BindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	bind := gateway.BindRequest{
		PhoneA:           req.PhoneA,
		PhoneB:           req.PhoneB,
		EndDate:          req.EndDate,
		OtherCallAllowed: req.OtherCallAllowed,
		RecordingEnabled: req.RecordingEnabled,
	}
	h.relay(w, r, gateway.MethodAXBBind, req.PhoneA, func(ctx context.Context) (gateway.Response, error) {
		return h.gateway.BindVirtualNumber(ctx, bind)
	})
}

func (h *GatewayHandler) BindSecond(w http.ResponseWriter, r *http.Request) {
	var req BindSecondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	bind := gateway.BindSecondRequest{
		SubscriptionID:   pathParam(r, "subs_id"),
		PhoneB:           req.PhoneB,
		EndDate:          req.EndDate,
		OtherCallAllowed: req.OtherCallAllowed,
		RecordingEnabled: req.RecordingEnabled,
	}
	h.relay(w, r, gateway.MethodAXBBindSecond, req.PhoneB, func(ctx context.Context) (gateway.Response, error) {
		return h.gateway.BindVirtualNumberSecond(ctx, bind)
	})
}

func (h *GatewayHandler) Unbind(w http.ResponseWriter, r *http.Request) {
	subsID := pathParam(r, "subs_id")
	h.relay(w, r, gateway.MethodAXBUnbind, "", func(ctx context.Context) (gateway.Response, error) {
		return h.gateway.UnbindVirtualNumber(ctx, subsID)
	})
}
