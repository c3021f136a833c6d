package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Terms        TermsConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"TRAVELHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"TRAVELHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRAVELHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRAVELHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRAVELHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRAVELHUB_DB_DSN"`
	Driver string `envconfig:"TRAVELHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRAVELHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"TRAVELHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRAVELHUB_DB_USER"`
	LegacyPassword string `envconfig:"TRAVELHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRAVELHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRAVELHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRAVELHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRAVELHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRAVELHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRAVELHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRAVELHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRAVELHUB_REDIS_ADDR"`
	Password     string        `envconfig:"TRAVELHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRAVELHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRAVELHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRAVELHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRAVELHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRAVELHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRAVELHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"TRAVELHUB_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"TRAVELHUB_JWT_ISSUER" required:"true"`
}

// TermsConfig pins the currently required version of each legal document.
// Bumping a version forces every user to re-accept on next prompt.
type TermsConfig struct {
	TermsOfServiceVersion string `envconfig:"TRAVELHUB_TERMS_TOS_VERSION" default:"1.0"`
	PrivacyPolicyVersion  string `envconfig:"TRAVELHUB_TERMS_PRIVACY_VERSION" default:"1.0"`
	RefundPolicyVersion   string `envconfig:"TRAVELHUB_TERMS_REFUND_VERSION" default:"1.0"`
}

type IdempotencyConfig struct {
	TTL              time.Duration `envconfig:"TRAVELHUB_IDEMPOTENCY_TTL" default:"24h"`
	CleanupRetention time.Duration `envconfig:"TRAVELHUB_IDEMPOTENCY_CLEANUP_RETENTION" default:"24h"`
}

type RateLimitConfig struct {
	PaymentWindow time.Duration `envconfig:"TRAVELHUB_RATE_LIMIT_PAYMENT_WINDOW" default:"1m"`
	PaymentLimit  int           `envconfig:"TRAVELHUB_RATE_LIMIT_PAYMENT_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRAVELHUB_AUTO_MIGRATE" default:"false"`
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
