package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"alidayu/internal/pkg/errors"
	"alidayu/internal/platform/auth"
)

type TokenHandler struct {
	clients  *auth.ClientStore
	tokenSvc *auth.TokenService
}

func NewTokenHandler(clients *auth.ClientStore, tokenSvc *auth.TokenService) *TokenHandler {
	return &TokenHandler{clients: clients, tokenSvc: tokenSvc}
}

type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "client_id and client_secret are required", nil)
		return
	}

	scopes, err := h.clients.Authenticate(req.ClientID, req.ClientSecret)
	if err != nil {
		log.Warn().Str("client_id", req.ClientID).Msg("rejected token request")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid client credentials", nil)
		return
	}

	token, err := h.tokenSvc.GenerateAccessToken(req.ClientID, scopes)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenSvc.TTL().Seconds()),
	})
}
