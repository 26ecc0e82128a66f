package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"alidayu/internal/engine/gateway"
	"alidayu/internal/pkg/errors"
)

type TTSCallRequest struct {
	CalledNumber     string            `json:"called_number"`
	CalledShowNumber string            `json:"called_show_number"`
	TemplateCode     string            `json:"template_code"`
	Params           map[string]string `json:"params"`
	Extend           string            `json:"extend"`
}

func (h *GatewayHandler) TTSCall(w http.ResponseWriter, r *http.Request) {
	var req TTSCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	call := gateway.TTSRequest{
		CalledNumber:     req.CalledNumber,
		CalledShowNumber: req.CalledShowNumber,
		TemplateCode:     req.TemplateCode,
		Params:           req.Params,
		Extend:           req.Extend,
	}
	h.relay(w, r, gateway.MethodTTSSingleCall, req.CalledNumber, func(ctx context.Context) (gateway.Response, error) {
		return h.gateway.TTSSingleCall(ctx, call)
	})
}
