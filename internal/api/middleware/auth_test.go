package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apiContext "alidayu/internal/api/context"
	"alidayu/internal/platform/auth"
	"alidayu/internal/platform/config"
)

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := auth.NewTokenService(config.JWTConfig{Secret: "jwt-secret", AccessTokenTTL: time.Minute})
	mw := NewAuthMiddleware(tokenSvc)

	token, err := tokenSvc.GenerateAccessToken("billing", []string{auth.ScopeSMS})
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := httptest.NewRecorder()
			mw.Handle(func(w http.ResponseWriter, r *http.Request) {
				claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
				if claims.ClientID != "billing" {
					t.Errorf("Expected client billing, got %s", claims.ClientID)
				}
				w.WriteHeader(http.StatusOK)
			})(rr, req)

			if rr.Code != tt.want {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.want)
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	tests := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"granted", &auth.Claims{ClientID: "c", Scopes: []string{auth.ScopeSMS}}, http.StatusOK},
		{"wildcard", &auth.Claims{ClientID: "c", Scopes: []string{"*"}}, http.StatusOK},
		{"missing scope", &auth.Claims{ClientID: "c", Scopes: []string{auth.ScopeTTS}}, http.StatusForbidden},
		{"no claims", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.claims != nil {
				req = withClaims(req, tt.claims)
			}
			rr := httptest.NewRecorder()
			RequireScope(auth.ScopeSMS)(ok)(rr, req)

			if rr.Code != tt.want {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.want)
			}
		})
	}
}
