package handlers

import (
	"database/sql"
	stderrors "errors"
	"net/http"
	"strconv"

	apiContext "alidayu/internal/api/context"
	"alidayu/internal/pkg/errors"
	"alidayu/internal/platform/auth"
	"alidayu/internal/platform/models"
	"alidayu/internal/platform/repositories"
)

type DispatchHandler struct {
	repo *repositories.DispatchRepository
}

func NewDispatchHandler(repo *repositories.DispatchRepository) *DispatchHandler {
	return &DispatchHandler{repo: repo}
}

// clientScope is the client id a caller's queries are limited to. Empty means
// every client.
func clientScope(r *http.Request) (string, bool) {
	claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
	if !ok || claims == nil {
		return "", false
	}
	if claims.AllClients() {
		return "", true
	}
	return claims.ClientID, true
}

func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	clientID, ok := clientScope(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing credentials", nil)
		return
	}

	dispatches, err := h.repo.List(clientID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dispatches == nil {
		dispatches = []*models.Dispatch{}
	}

	errors.WriteJSON(w, http.StatusOK, dispatches)
}

func (h *DispatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientScope(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing credentials", nil)
		return
	}

	d, err := h.repo.GetByID(pathParam(r, "dispatch_id"))
	// Another client's dispatch is reported as missing.
	if err == nil && clientID != "" && d.ClientID != clientID {
		err = sql.ErrNoRows
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Dispatch not found", nil)
		return
	}
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, d)
}
