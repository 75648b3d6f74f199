package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Postgres struct {
	Host            string        `env:"DATABASE_HOST" envDefault:"localhost"`
	Port            int           `env:"DATABASE_PORT" envDefault:"5432"`
	User            string        `env:"DATABASE_USER" envDefault:"bookstore"`
	Password        string        `env:"DATABASE_PASSWORD" envDefault:"bookstore"`
	Name            string        `env:"DATABASE_NAME" envDefault:"bookstore"`
	SSLMode         string        `env:"DATABASE_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"DATABASE_MIN_CONNS" envDefault:"1"`
	MaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"1h"`
}

// DSN returns the pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

type Redis struct {
	Addr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"336h"`
}

type PayPal struct {
	ReceiverEmail string `env:"PAYPAL_RECEIVER_EMAIL,required,notEmpty"`
	Test          bool   `env:"PAYPAL_TEST" envDefault:"true"`
	SandboxURL    string `env:"PAYPAL_SANDBOX_URL" envDefault:"https://www.sandbox.paypal.com/cgi-bin/webscr"`
	LiveURL       string `env:"PAYPAL_LIVE_URL" envDefault:"https://www.paypal.com/cgi-bin/webscr"`
	CurrencyCode  string `env:"PAYPAL_CURRENCY_CODE" envDefault:"USD"`
	IdentityToken string `env:"PAYPAL_IDENTITY_TOKEN"`
	ClientID      string `env:"PAYPAL_CLIENT_ID"`
	ClientSecret  string `env:"PAYPAL_CLIENT_SECRET"`
	Mode          string `env:"PAYPAL_MODE" envDefault:"sandbox"`
	// TrustReturn marks an order paid when the buyer comes back through the
	// return URL. When false only a verified IPN marks it paid.
	TrustReturn bool `env:"PAYPAL_TRUST_RETURN" envDefault:"true"`
}

type Email struct {
	Backend      string `env:"EMAIL_BACKEND" envDefault:"console"`
	Host         string `env:"EMAIL_HOST" envDefault:"smtp.gmail.com"`
	Port         int    `env:"EMAIL_PORT" envDefault:"587"`
	UseTLS       bool   `env:"EMAIL_USE_TLS" envDefault:"true"`
	HostUser     string `env:"EMAIL_HOST_USER"`
	HostPassword string `env:"EMAIL_HOST_PASSWORD"`
	DefaultFrom  string `env:"DEFAULT_FROM_EMAIL" envDefault:"Bookstore <noreply@bookstore.com>"`
	AdminName    string `env:"ADMIN_NAME" envDefault:"Admin"`
	AdminEmail   string `env:"ADMIN_EMAIL" envDefault:"admin@bookstore.com"`
}

type Tracing struct {
	Enabled      bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

type Config struct {
	HTTPAddr     string          `env:"HTTP_ADDR" envDefault:":8000"`
	GRPCAddr     string          `env:"GRPC_ADDR" envDefault:":50051"`
	SecretKey    string          `env:"SECRET_KEY,required,notEmpty"`
	Debug        bool            `env:"DEBUG" envDefault:"false"`
	AllowedHosts []string        `env:"ALLOWED_HOSTS" envDefault:"127.0.0.1,localhost" envSeparator:","`
	LogLevel     string          `env:"LOG_LEVEL" envDefault:"info"`
	ShippingCost decimal.Decimal `env:"SHIPPING_COST" envDefault:"100"`

	Postgres Postgres
	Redis    Redis
	PayPal   PayPal
	Email    Email
	Tracing  Tracing
}

// PayPalActionURL is the hosted payment page the checkout form posts to.
func (c Config) PayPalActionURL() string {
	if c.PayPal.Test {
		return c.PayPal.SandboxURL
	}
	return c.PayPal.LiveURL
}

func Load() (Config, error) {
	_ = godotenv.Load() // load .env if it exists

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ShippingCost.IsNegative() {
		return Config{}, fmt.Errorf("parse config: SHIPPING_COST must not be negative")
	}

	log.Info().Str("http_addr", cfg.HTTPAddr).Str("grpc_addr", cfg.GRPCAddr).Msg("[config] listeners")
	log.Info().Str("host", cfg.Postgres.Host).Int("port", cfg.Postgres.Port).Str("db", cfg.Postgres.Name).Msg("[config] postgres")
	log.Info().Str("mode", cfg.PayPal.Mode).Bool("test", cfg.PayPal.Test).Str("currency", cfg.PayPal.CurrencyCode).Msg("[config] paypal")
	log.Info().Str("backend", cfg.Email.Backend).Str("shipping", cfg.ShippingCost.StringFixed(2)).Msg("[config] shop")
	return cfg, nil
}
