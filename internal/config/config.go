package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the groupdump API service.
type Config struct {
	Addr           string        `env:"ADDR,default=:8080"`
	DBDSN          string        `env:"DB_DSN,required"`
	JWTSigningKey  string        `env:"JWT_SIGNING_KEY,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,default=30m"`

	// ProcessorMode selects the payment backend: "live" talks to the real
	// processor API, "simulated" runs the in-memory simulator.
	ProcessorMode        string        `env:"PROCESSOR_MODE,default=simulated"`
	ProcessorSecretKey   string        `env:"PROCESSOR_SECRET_KEY"`
	ProcessorBaseURL     string        `env:"PROCESSOR_BASE_URL,default=https://api.stripe.com"`
	ProcessorTimeout     time.Duration `env:"PROCESSOR_TIMEOUT,default=15s"`
	BusinessCardholderID string        `env:"BUSINESS_CARDHOLDER_ID"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	MailFrom     string `env:"MAIL_FROM,default=no-reply@groupdump.io"`
	InviteBase   string `env:"INVITE_BASE_URL,default=http://localhost:5173/invites"`

	NATSURL        string   `env:"NATS_URL"`
	OTLPEndpoint   string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
