package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"alidayu/internal/engine/gateway"
	"alidayu/internal/engine/signing"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Clients   []ClientConfig  `mapstructure:"clients"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
	MigrationsDir  string `mapstructure:"migrations_dir"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// GatewayConfig holds the credentials and endpoint selection for the
// messaging gateway.
type GatewayConfig struct {
	AppKey      string        `mapstructure:"app_key"`
	AppSecret   string        `mapstructure:"app_secret"`
	PartnerKey  string        `mapstructure:"partner_key"`
	Format      string        `mapstructure:"format"`
	Version     string        `mapstructure:"version"`
	Secure      bool          `mapstructure:"secure"`
	Environment string        `mapstructure:"environment"`
	SignMethod  string        `mapstructure:"sign_method"`
	Timezone    string        `mapstructure:"timezone"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ClientConfig is a caller allowed to use the relay. SecretHash is a bcrypt
// hash. Delivery results are posted to CallbackURL when it is set.
type ClientConfig struct {
	ID             string   `mapstructure:"id"`
	SecretHash     string   `mapstructure:"secret_hash"`
	Scopes         []string `mapstructure:"scopes"`
	CallbackURL    string   `mapstructure:"callback_url"`
	CallbackSecret string   `mapstructure:"callback_secret"`
}

type WorkerConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MinAge      time.Duration `mapstructure:"min_age"`
	BatchSize   int           `mapstructure:"batch_size"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.path", "data/dispatches.db")
	v.SetDefault("database.max_connections", 1)
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_ttl", time.Hour)

	v.SetDefault("rate_limit.per_minute", 600)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// Registered so AutomaticEnv can supply credentials (GATEWAY_APP_SECRET).
	v.SetDefault("gateway.app_key", "")
	v.SetDefault("gateway.app_secret", "")
	v.SetDefault("gateway.partner_key", "")
	v.SetDefault("gateway.format", "json")
	v.SetDefault("gateway.version", gateway.DefaultVersion)
	v.SetDefault("gateway.environment", "sandbox")
	v.SetDefault("gateway.sign_method", "md5")
	v.SetDefault("gateway.timezone", "Asia/Shanghai")
	v.SetDefault("gateway.timeout", 10*time.Second)

	v.SetDefault("worker.interval", 5*time.Minute)
	v.SetDefault("worker.min_age", 2*time.Minute)
	v.SetDefault("worker.batch_size", 100)
	v.SetDefault("worker.max_attempts", 3)
}

// ClientConfig converts the gateway section into the client's configuration.
// Credentials are checked later by gateway.New.
func (g GatewayConfig) ClientConfig() (gateway.Config, error) {
	env, err := gateway.ParseEnvironment(g.Environment)
	if err != nil {
		return gateway.Config{}, err
	}
	format, err := gateway.ParseFormat(g.Format)
	if err != nil {
		return gateway.Config{}, err
	}
	method, err := signing.ParseMethod(g.SignMethod)
	if err != nil {
		return gateway.Config{}, &gateway.ConfigurationError{Field: "sign_method", Reason: err.Error()}
	}

	loc := gateway.DefaultLocation
	if g.Timezone != "" {
		loc, err = time.LoadLocation(g.Timezone)
		if err != nil {
			return gateway.Config{}, fmt.Errorf("gateway timezone: %w", err)
		}
	}

	return gateway.Config{
		AppKey:      g.AppKey,
		AppSecret:   g.AppSecret,
		PartnerKey:  g.PartnerKey,
		Format:      format,
		Version:     g.Version,
		Secure:      g.Secure,
		Environment: env,
		SignMethod:  method,
		Location:    loc,
	}, nil
}
