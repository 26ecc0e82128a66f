package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"alidayu/internal/platform/config"
)

var ErrInvalidCredentials = errors.New("invalid client credentials")

// ClientStore checks relay callers against the configured bcrypt hashes.
type ClientStore struct {
	clients map[string]config.ClientConfig
}

func NewClientStore(clients []config.ClientConfig) *ClientStore {
	m := make(map[string]config.ClientConfig, len(clients))
	for _, c := range clients {
		m[c.ID] = c
	}
	return &ClientStore{clients: m}
}

// Authenticate returns the client's scopes when secret matches.
func (s *ClientStore) Authenticate(clientID, secret string) ([]string, error) {
	c, ok := s.clients[clientID]
	if !ok {
		// Compare anyway so unknown ids take as long as wrong secrets.
		bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return c.Scopes, nil
}

// HashSecret is used by operators to produce secret_hash values.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused"), bcrypt.DefaultCost)
