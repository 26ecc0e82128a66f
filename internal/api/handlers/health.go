package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"alidayu/internal/pkg/errors"
)

type HealthHandler struct {
	db         *sql.DB
	gatewayURL string
}

func NewHealthHandler(db *sql.DB, gatewayURL string) *HealthHandler {
	return &HealthHandler{db: db, gatewayURL: gatewayURL}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	status := "healthy"
	if err := h.db.PingContext(r.Context()); err != nil {
		checks["dispatch_db"] = "unhealthy: " + err.Error()
		status = "degraded"
	} else {
		checks["dispatch_db"] = "healthy"
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Gateway   string            `json:"gateway"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Gateway:   h.gatewayURL,
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	errors.WriteJSON(w, statusCode, response)
}
