package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"alidayu/internal/engine/gateway"
	"alidayu/internal/pkg/errors"
)

type SendSMSRequest struct {
	Receivers    []string          `json:"receivers"`
	TemplateCode string            `json:"template_code"`
	SignName     string            `json:"sign_name"`
	SMSType      string            `json:"sms_type"`
	Params       map[string]string `json:"params"`
	Extend       string            `json:"extend"`
}

func (h *GatewayHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var req SendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	smsReq := gateway.SMSRequest{
		ReceiverNumbers: req.Receivers,
		TemplateCode:    req.TemplateCode,
		SignName:        req.SignName,
		SMSType:         req.SMSType,
		TemplateParams:  req.Params,
		Extend:          req.Extend,
	}
	h.relay(w, r, gateway.MethodSMSSend, strings.Join(req.Receivers, ","), func(ctx context.Context) (gateway.Response, error) {
		return h.gateway.SendSMS(ctx, smsReq)
	})
}

// QuerySMS reads receiver, date (YYYYMMDD), page, page_size and biz_id from
// the query string.
func (h *GatewayHandler) QuerySMS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := gateway.SMSQuery{
		ReceiverNumber: q.Get("receiver"),
		BizID:          q.Get("biz_id"),
	}

	if date := q.Get("date"); date != "" {
		t, err := time.ParseInLocation(gateway.QueryDateLayout, date, h.gateway.Location())
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "date must be formatted as YYYYMMDD", nil)
			return
		}
		query.QueryDate = t
	}

	var err error
	if query.CurrentPage, err = intParam(q.Get("page")); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "page must be a number", nil)
		return
	}
	if query.PageSize, err = intParam(q.Get("page_size")); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "page_size must be a number", nil)
		return
	}

	h.relay(w, r, gateway.MethodSMSQuery, query.ReceiverNumber, func(ctx context.Context) (gateway.Response, error) {
		return h.gateway.QuerySMS(ctx, query)
	})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
