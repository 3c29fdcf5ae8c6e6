package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "gourmetpress"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Payments PaymentsConfig
	Orders   OrdersConfig
	Cron     CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"GOURMETPRESS_APP_ENV" required:"true"`
	Port         string   `envconfig:"GOURMETPRESS_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"GOURMETPRESS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GOURMETPRESS_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool     `envconfig:"GOURMETPRESS_AUTO_MIGRATE" default:"false"`
	CORSOrigins  []string `envconfig:"GOURMETPRESS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GOURMETPRESS_DB_DSN"`
	Driver string `envconfig:"GOURMETPRESS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GOURMETPRESS_DB_HOST"`
	Port     int    `envconfig:"GOURMETPRESS_DB_PORT" default:"5432"`
	User     string `envconfig:"GOURMETPRESS_DB_USER"`
	Password string `envconfig:"GOURMETPRESS_DB_PASSWORD"`
	Name     string `envconfig:"GOURMETPRESS_DB_NAME"`
	SSLMode  string `envconfig:"GOURMETPRESS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GOURMETPRESS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOURMETPRESS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOURMETPRESS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOURMETPRESS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either GOURMETPRESS_DB_DSN or host/user/name settings are required")
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := dsn.Query()
	q.Set("sslmode", d.SSLMode)
	dsn.RawQuery = q.Encode()
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"GOURMETPRESS_REDIS_URL"`
	Address      string        `envconfig:"GOURMETPRESS_REDIS_ADDR"`
	Password     string        `envconfig:"GOURMETPRESS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOURMETPRESS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOURMETPRESS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOURMETPRESS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOURMETPRESS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOURMETPRESS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOURMETPRESS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GOURMETPRESS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GOURMETPRESS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GOURMETPRESS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PaymentsConfig struct {
	EnableCOD bool `envconfig:"GOURMETPRESS_ENABLE_COD" default:"true"`

	CardEnabled       bool          `envconfig:"GOURMETPRESS_CARD_ENABLED" default:"false"`
	CardAPIBase       string        `envconfig:"GOURMETPRESS_CARD_API_BASE" default:"https://api.cardprocessor.example"`
	CardAPIKey        string        `envconfig:"GOURMETPRESS_CARD_API_KEY"`
	CardSigningSecret string        `envconfig:"GOURMETPRESS_CARD_SIGNING_SECRET"`
	CardTimeout       time.Duration `envconfig:"GOURMETPRESS_CARD_TIMEOUT" default:"10s"`

	WebhookIdempotencyTTL time.Duration `envconfig:"GOURMETPRESS_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type OrdersConfig struct {
	Currency         string        `envconfig:"GOURMETPRESS_CURRENCY" default:"USD"`
	OrderBaseURL     string        `envconfig:"GOURMETPRESS_ORDER_BASE_URL" default:"http://localhost:8080/order-received"`
	PendingTTL       time.Duration `envconfig:"GOURMETPRESS_ORDER_PENDING_TTL" default:"24h"`
	LowStockNotice   int           `envconfig:"GOURMETPRESS_LOW_STOCK_NOTICE" default:"0"`
	TaxRateBps       int64         `envconfig:"GOURMETPRESS_TAX_RATE_BPS" default:"0"`
	DeliveryFeeCents int64         `envconfig:"GOURMETPRESS_DELIVERY_FEE_CENTS" default:"0"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GOURMETPRESS_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"GOURMETPRESS_CRON_LOCK_TTL" default:"65m"`
}
