package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"alidayu/internal/platform/config"
)

const issuer = "alidayu-relay"

// Scopes a relay client can be granted. "*" grants all of them.
const (
	ScopeSMS        = "sms"
	ScopeTTS        = "tts"
	ScopeBinding    = "binding"
	ScopeDispatches = "dispatches"
)

type Claims struct {
	ClientID string   `json:"cid"`
	Scopes   []string `json:"scp"`
	jwt.RegisteredClaims
}

func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}

// AllClients reports whether the client may read other clients' records.
func (c *Claims) AllClients() bool {
	for _, s := range c.Scopes {
		if s == "*" {
			return true
		}
	}
	return false
}

type TokenService struct {
	config config.JWTConfig
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{config: cfg}
}

func (s *TokenService) TTL() time.Duration {
	return s.config.AccessTokenTTL
}

func (s *TokenService) GenerateAccessToken(clientID string, scopes []string) (string, error) {
	now := time.Now()
	claims := Claims{
		ClientID: clientID,
		Scopes:   scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
