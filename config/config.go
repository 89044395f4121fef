package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/location-relay/pkg/configparser"
	"github.com/Temutjin2k/location-relay/pkg/logger"
)

// Errors
var (
	ErrEmptySecret     = errors.New("AUTH_JWT_SECRET must not be empty")
	ErrInvalidLogLevel = errors.New("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR")
	ErrInvalidPort     = errors.New("WEBSOCKET_PORT must not be empty")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName     string        `env:"SERVICE_NAME" default:"location-relay"`
		LogLevel        string        `env:"LOG_LEVEL" default:"INFO"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"5s"`

		WebSocket WebSocketConfig
		Relay     RelayConfig
		RateLimit RateLimitConfig
		Auth      Auth
	}

	WebSocketConfig struct {
		Port           string   `env:"WEBSOCKET_PORT" default:"8080"`
		AllowedOrigins []string `env:"RELAY_ALLOWED_ORIGINS"` // empty: any origin
	}

	RelayConfig struct {
		AuthTimeout         time.Duration `env:"RELAY_AUTH_TIMEOUT" default:"0s"` // 0: wait for the verifier forever
		GateUntilAuthorized bool          `env:"RELAY_GATE_UNTIL_AUTHORIZED" default:"false"`
		EnforceShopClaim    bool          `env:"RELAY_ENFORCE_SHOP_CLAIM" default:"false"`
		SendBuffer          int           `env:"RELAY_SEND_BUFFER" default:"256"`
		MaxMessageSize      int64         `env:"RELAY_MAX_MESSAGE_SIZE" default:"4096"`
		WriteWait           time.Duration `env:"RELAY_WRITE_WAIT" default:"10s"`
		PongWait            time.Duration `env:"RELAY_PONG_WAIT" default:"60s"`
	}

	RateLimitConfig struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" default:"10"` // 0 disables
		Burst int     `env:"RATE_LIMIT_BURST" default:"20"`

		// Proxies (IPs or CIDRs) whose X-Forwarded-For is believed; empty: none
		TrustedProxies []string `env:"RATE_LIMIT_TRUSTED_PROXIES"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"high-level-secret"`
	}
)

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, ErrEmptySecret)
	}
	if !logger.ValidateLogLevel(c.LogLevel) {
		errs = append(errs, ErrInvalidLogLevel)
	}
	if c.WebSocket.Port == "" {
		errs = append(errs, ErrInvalidPort)
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the relay.
func (c WebSocketConfig) Addr() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port)
}

// PrintConfig prints the effective configuration with secrets masked.
func PrintConfig(cfg *Config) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  Configuration\n")
	fmt.Fprintf(&b, "    SERVICE_NAME                 %s\n", cfg.ServiceName)
	fmt.Fprintf(&b, "    LOG_LEVEL                    %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "    SHUTDOWN_TIMEOUT             %s\n", cfg.ShutdownTimeout)
	fmt.Fprintf(&b, "    WEBSOCKET_PORT               %s\n", cfg.WebSocket.Port)
	fmt.Fprintf(&b, "    RELAY_ALLOWED_ORIGINS        %s\n", strings.Join(cfg.WebSocket.AllowedOrigins, ","))
	fmt.Fprintf(&b, "    RELAY_AUTH_TIMEOUT           %s\n", cfg.Relay.AuthTimeout)
	fmt.Fprintf(&b, "    RELAY_GATE_UNTIL_AUTHORIZED  %t\n", cfg.Relay.GateUntilAuthorized)
	fmt.Fprintf(&b, "    RELAY_ENFORCE_SHOP_CLAIM     %t\n", cfg.Relay.EnforceShopClaim)
	fmt.Fprintf(&b, "    RELAY_SEND_BUFFER            %d\n", cfg.Relay.SendBuffer)
	fmt.Fprintf(&b, "    RELAY_MAX_MESSAGE_SIZE       %d\n", cfg.Relay.MaxMessageSize)
	fmt.Fprintf(&b, "    RELAY_WRITE_WAIT             %s\n", cfg.Relay.WriteWait)
	fmt.Fprintf(&b, "    RELAY_PONG_WAIT              %s\n", cfg.Relay.PongWait)
	fmt.Fprintf(&b, "    RATE_LIMIT_RPS               %g\n", cfg.RateLimit.RPS)
	fmt.Fprintf(&b, "    RATE_LIMIT_BURST             %d\n", cfg.RateLimit.Burst)
	fmt.Fprintf(&b, "    RATE_LIMIT_TRUSTED_PROXIES   %s\n", strings.Join(cfg.RateLimit.TrustedProxies, ","))
	fmt.Fprintf(&b, "    AUTH_JWT_SECRET              %s\n", mask(cfg.Auth.JWTSecret))
	fmt.Print(b.String())
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
