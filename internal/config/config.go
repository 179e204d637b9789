// Package config resolves the storefront settings from defaults, an
// optional config file and the process environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PaymentMode selects between the simulated and the real gateway.
type PaymentMode string

const (
	ModeDemo       PaymentMode = "demo"
	ModeProduction PaymentMode = "production"
)

type Config struct {
	Server    Server
	Payment   Payment
	Auth      Auth
	Storage   Storage
	Telemetry Telemetry
}

type Server struct {
	Addr            string
	PingMessage     string
	RateLimitRPS    float64
	RateLimitBurst  int
	TrustProxy      bool // honor X-Forwarded-For; only behind a proxy that overwrites it
	ShutdownTimeout time.Duration
}

type Payment struct {
	Mode           PaymentMode
	APIURL         string
	SecretKey      string
	DemoCashierURL string
	// CallbackTimeout is carried for operators; no request path enforces it.
	CallbackTimeout        time.Duration
	GatewayTimeout         time.Duration
	WebhookSignatureHeader string
	Currency               string
	Country                string
	RequireSignature       bool
	LinkOrders             bool
}

// IsProduction reports whether calls go to the real gateway.
func (p Payment) IsProduction() bool { return p.Mode == ModeProduction }

type Auth struct {
	JWTSecret    string
	TokenTTL     time.Duration
	DemoPassword string
	BcryptCost   int
}

type Storage struct {
	SQLitePath string
	RedisAddr  string
	ReplayTTL  time.Duration
}

type Telemetry struct {
	ServiceName  string
	OTLPEndpoint string
	Environment  string
	LogLevel     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("PING_MESSAGE", "ping")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("PAYMENT_MODE", string(ModeDemo))
	v.SetDefault("OPAY_API_URL", "https://api.opaycheckout.com")
	v.SetDefault("DEMO_OPAY_API_URL", "https://sandbox.opaycheckout.com")
	v.SetDefault("OPAY_SECRET_KEY", "")
	v.SetDefault("DEMO_OPAY_CASHIER_URL", "https://sandbox.opaycheckout.com/demo")
	v.SetDefault("PAYMENT_CALLBACK_TIMEOUT", 30000)
	v.SetDefault("PAYMENT_GATEWAY_TIMEOUT", "15s")
	v.SetDefault("PAYMENT_WEBHOOK_SIGNATURE_HEADER", "opay-signature")
	v.SetDefault("PAYMENT_CURRENCY", "NGN")
	v.SetDefault("PAYMENT_COUNTRY", "NG")
	v.SetDefault("PAYMENT_REQUIRE_SIGNATURE", false)
	v.SetDefault("PAYMENT_LINK_ORDERS", false)

	v.SetDefault("JWT_SECRET", "dev-secret-key")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("ADMIN_DEMO_PASSWORD", "password123")
	v.SetDefault("ADMIN_BCRYPT_COST", 10)

	v.SetDefault("SQLITE_PATH", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CALLBACK_REPLAY_TTL", "24h")

	v.SetDefault("OTEL_SERVICE_NAME", "storefront")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("DEPLOYMENT_ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load resolves the configuration. path may be empty; when set, the file
// is read first and environment variables still take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	mode := PaymentMode(strings.ToLower(strings.TrimSpace(v.GetString("PAYMENT_MODE"))))

	apiURL := v.GetString("DEMO_OPAY_API_URL")
	if mode == ModeProduction {
		apiURL = v.GetString("OPAY_API_URL")
	}

	return &Config{
		Server: Server{
			Addr:            ":" + strings.TrimPrefix(v.GetString("PORT"), ":"),
			PingMessage:     v.GetString("PING_MESSAGE"),
			RateLimitRPS:    v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
			TrustProxy:      v.GetBool("TRUST_PROXY"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Payment: Payment{
			Mode:                   mode,
			APIURL:                 strings.TrimRight(apiURL, "/"),
			SecretKey:              v.GetString("OPAY_SECRET_KEY"),
			DemoCashierURL:         v.GetString("DEMO_OPAY_CASHIER_URL"),
			CallbackTimeout:        time.Duration(v.GetInt("PAYMENT_CALLBACK_TIMEOUT")) * time.Millisecond,
			GatewayTimeout:         v.GetDuration("PAYMENT_GATEWAY_TIMEOUT"),
			WebhookSignatureHeader: v.GetString("PAYMENT_WEBHOOK_SIGNATURE_HEADER"),
			Currency:               v.GetString("PAYMENT_CURRENCY"),
			Country:                v.GetString("PAYMENT_COUNTRY"),
			RequireSignature:       v.GetBool("PAYMENT_REQUIRE_SIGNATURE"),
			LinkOrders:             v.GetBool("PAYMENT_LINK_ORDERS"),
		},
		Auth: Auth{
			JWTSecret:    v.GetString("JWT_SECRET"),
			TokenTTL:     v.GetDuration("JWT_EXPIRY"),
			DemoPassword: v.GetString("ADMIN_DEMO_PASSWORD"),
			BcryptCost:   v.GetInt("ADMIN_BCRYPT_COST"),
		},
		Storage: Storage{
			SQLitePath: v.GetString("SQLITE_PATH"),
			RedisAddr:  v.GetString("REDIS_ADDR"),
			ReplayTTL:  v.GetDuration("CALLBACK_REPLAY_TTL"),
		},
		Telemetry: Telemetry{
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Environment:  v.GetString("DEPLOYMENT_ENV"),
			LogLevel:     v.GetString("LOG_LEVEL"),
		},
	}
}

// Problems lists every configuration error. An empty slice means the
// configuration is usable.
func (c *Config) Problems() []string {
	var problems []string

	switch c.Payment.Mode {
	case ModeDemo:
	case ModeProduction:
		if c.Payment.SecretKey == "" {
			problems = append(problems, "OPAY_SECRET_KEY is required in production mode")
		}
		if c.Payment.APIURL == "" {
			problems = append(problems, "OPAY_API_URL is required in production mode")
		}
	default:
		problems = append(problems, fmt.Sprintf("PAYMENT_MODE must be %q or %q, got %q", ModeDemo, ModeProduction, c.Payment.Mode))
	}

	if c.Auth.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, "JWT_EXPIRY must be a positive duration")
	}

	return problems
}

// Validate joins Problems into a single error.
func (c *Config) Validate() error {
	problems := c.Problems()
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = errors.New(p)
	}
	return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
}
