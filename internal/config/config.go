package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every environment-derived setting. It is loaded once in main
// and handed to constructors; nothing below the handlers reads the
// environment directly.
type Config struct {
	Port        int    `env:"PORT" env-default:"8080"`
	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	JWTSecret   string `env:"JWT_SECRET" env-required:"true"`

	Redis   RedisConfig
	Storage StorageConfig
	CDN     CDNConfig
	Stripe  StripeConfig
	SMTP    SMTPConfig
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// StorageConfig configures the S3-compatible object store. PublicURL, when
// set, is used as the base for public object URLs (typically the CDN domain).
type StorageConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" env-required:"true"`
	AccessKey string `env:"MINIO_ACCESS_KEY" env-required:"true"`
	SecretKey string `env:"MINIO_SECRET_KEY" env-required:"true"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"product-images"`
	PublicURL string `env:"MINIO_PUBLIC_URL" env-default:""`
}

// CDNConfig configures CloudFront invalidation. An empty DistributionID
// disables invalidation entirely; that is a supported deployment mode, not an
// error.
type CDNConfig struct {
	DistributionID string `env:"AWS_CLOUDFRONT_DISTRIBUTION_ID" env-default:""`
	AccessKeyID    string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretKey      string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Region         string `env:"AWS_REGION" env-default:"us-east-1"`
}

type StripeConfig struct {
	SecretKey string `env:"STRIPE_SECRET_KEY" env-default:""`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" env-default:""`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	User     string `env:"SMTP_USER" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:"noreply@meeplemart.local"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment config: %w", err)
	}
	return cfg, nil
}
