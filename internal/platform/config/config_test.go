package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"alidayu/internal/engine/gateway"
	"alidayu/internal/engine/signing"
)

const testYAML = `
server:
  port: 9090
gateway:
  app_key: "12345678"
  app_secret: "from-file"
  partner_key: "partner"
  secure: true
  environment: production
  sign_method: hmac-md5
  timezone: UTC
clients:
  - id: billing
    secret_hash: "$2a$10$abc"
    scopes: ["sms", "tts"]
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("GATEWAY_APP_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Gateway.AppSecret != "from-env" {
		t.Errorf("Expected env override for app secret, got %q", cfg.Gateway.AppSecret)
	}
	if cfg.Gateway.Version != "2.0" {
		t.Errorf("Expected default version 2.0, got %q", cfg.Gateway.Version)
	}
	if len(cfg.Clients) != 1 || cfg.Clients[0].ID != "billing" || len(cfg.Clients[0].Scopes) != 2 {
		t.Errorf("Unexpected clients: %+v", cfg.Clients)
	}
	if cfg.Worker.BatchSize != 100 {
		t.Errorf("Expected default batch size 100, got %d", cfg.Worker.BatchSize)
	}
}

func TestGatewayConfig_ClientConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	gc, err := cfg.Gateway.ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}

	if gc.Environment != gateway.EnvProduction {
		t.Errorf("Expected production, got %s", gc.Environment)
	}
	if gc.SignMethod != signing.MethodHMAC {
		t.Errorf("Expected hmac, got %s", gc.SignMethod)
	}
	if gc.Format != gateway.FormatJSON {
		t.Errorf("Expected json, got %s", gc.Format)
	}
	if gc.Location != time.UTC {
		t.Errorf("Expected UTC, got %v", gc.Location)
	}

	client, err := gateway.New(gc)
	if err != nil {
		t.Fatalf("gateway.New() error = %v", err)
	}
	if client.BaseURL() != "https://eco.taobao.com/router/rest" {
		t.Errorf("Unexpected base URL %s", client.BaseURL())
	}
}

func TestGatewayConfig_ClientConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  GatewayConfig
	}{
		{"environment", GatewayConfig{Environment: "staging"}},
		{"format", GatewayConfig{Format: "csv"}},
		{"sign method", GatewayConfig{SignMethod: "sha1"}},
		{"timezone", GatewayConfig{Timezone: "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.ClientConfig(); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
