package models

import "encoding/json"

const (
	DispatchSent        = "sent"
	DispatchFailed      = "failed"
	DispatchDelivered   = "delivered"
	DispatchUndelivered = "undelivered"
	DispatchUnknown     = "unknown"
)

// Dispatch is one relayed gateway call.
type Dispatch struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id"`
	Method       string          `json:"method"`
	Receiver     string          `json:"receiver,omitempty"`
	BizID        string          `json:"biz_id,omitempty"`
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
	Response     json.RawMessage `json:"response,omitempty"` // gateway reply as received
	CreatedAt    int64           `json:"created_at"`
	ReconciledAt *int64          `json:"reconciled_at,omitempty"`
}
