package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "AURELLE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AURELLE_DB_DSN"
	EnvDBHost = "AURELLE_DB_HOST"
	EnvDBUser = "AURELLE_DB_USER"
	EnvDBName = "AURELLE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Razorpay     RazorpayConfig
	Mailer       MailerConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"AURELLE_APP_ENV" required:"true"`
	Port         string `envconfig:"AURELLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AURELLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AURELLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AURELLE_DB_DSN"`
	Driver string `envconfig:"AURELLE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AURELLE_DB_HOST"`
	LegacyPort     int    `envconfig:"AURELLE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AURELLE_DB_USER"`
	LegacyPassword string `envconfig:"AURELLE_DB_PASSWORD"`
	LegacyName     string `envconfig:"AURELLE_DB_NAME"`
	LegacySSLMode  string `envconfig:"AURELLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AURELLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AURELLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AURELLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AURELLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AURELLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AURELLE_REDIS_ADDR"`
	Password     string        `envconfig:"AURELLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"AURELLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AURELLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AURELLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AURELLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AURELLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AURELLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AURELLE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AURELLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AURELLE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// RazorpayConfig holds the payment gateway credentials. KeySecret doubles as the
// HMAC secret for payment signature verification.
type RazorpayConfig struct {
	KeyID     string `envconfig:"AURELLE_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"AURELLE_RAZORPAY_KEY_SECRET"`
	Currency  string `envconfig:"AURELLE_RAZORPAY_CURRENCY" default:"INR"`
}

type MailerConfig struct {
	APIBaseURL  string        `envconfig:"AURELLE_MAILER_API_BASE_URL"`
	APIKey      string        `envconfig:"AURELLE_MAILER_API_KEY"`
	FromAddress string        `envconfig:"AURELLE_MAILER_FROM" default:"orders@aurelle.shop"`
	Timeout     time.Duration `envconfig:"AURELLE_MAILER_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AURELLE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
