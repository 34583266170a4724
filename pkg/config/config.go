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
	DB           DBConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Session      SessionConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	Sendgrid     SendgridConfig
	Twilio       TwilioConfig
	Admin        AdminConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MKITCHEN_APP_ENV" required:"true"`
	Port         string `envconfig:"MKITCHEN_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"MKITCHEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MKITCHEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MKITCHEN_DB_DSN"`
	Driver string `envconfig:"MKITCHEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MKITCHEN_DB_HOST"`
	LegacyPort     int    `envconfig:"MKITCHEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MKITCHEN_DB_USER"`
	LegacyPassword string `envconfig:"MKITCHEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"MKITCHEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"MKITCHEN_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"MKITCHEN_SQLITE_PATH" default:"mkitchen.db"`

	MaxOpenConns    int           `envconfig:"MKITCHEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MKITCHEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MKITCHEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MKITCHEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MKITCHEN_REDIS_URL"`
	Address      string        `envconfig:"MKITCHEN_REDIS_ADDR"`
	Password     string        `envconfig:"MKITCHEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"MKITCHEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MKITCHEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MKITCHEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MKITCHEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MKITCHEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MKITCHEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// StorageConfig selects the key-value backend holding carts, checkout flows and orders.
type StorageConfig struct {
	Driver string `envconfig:"MKITCHEN_STORAGE_DRIVER" default:"redis"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverRedis, StorageDriverSQL, StorageDriverMemory:
		return nil
	}
	return fmt.Errorf("%s must be one of redis, sql, memory (got %q)", EnvStorageDriver, s.Driver)
}

// Normalized returns the lower-cased driver name.
func (s StorageConfig) Normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

type SessionConfig struct {
	Secret       string        `envconfig:"MKITCHEN_SESSION_SECRET" required:"true"`
	Issuer       string        `envconfig:"MKITCHEN_SESSION_ISSUER" default:"mkitchen"`
	TTL          time.Duration `envconfig:"MKITCHEN_SESSION_TTL" default:"720h"`
	CookieName   string        `envconfig:"MKITCHEN_SESSION_COOKIE" default:"mk_session"`
	CookieSecure bool          `envconfig:"MKITCHEN_SESSION_COOKIE_SECURE" default:"false"`
}

type CheckoutConfig struct {
	NotificationTimeout time.Duration `envconfig:"MKITCHEN_CHECKOUT_NOTIFICATION_TIMEOUT" default:"15s"`
	PlacementLockTTL    time.Duration `envconfig:"MKITCHEN_CHECKOUT_PLACEMENT_LOCK_TTL" default:"2m"`
}

// validate keeps the placement lock alive for both sequential notifier
// calls, so a lock cannot expire while an order is still being placed.
func (c CheckoutConfig) validate() error {
	if c.NotificationTimeout <= 0 {
		return fmt.Errorf("%s must be positive (got %v)", EnvNotificationTimeout, c.NotificationTimeout)
	}
	if c.PlacementLockTTL <= 2*c.NotificationTimeout {
		return fmt.Errorf("%s must exceed twice %s (got %v, timeout %v)",
			EnvPlacementLockTTL, EnvNotificationTimeout, c.PlacementLockTTL, c.NotificationTimeout)
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MKITCHEN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MKITCHEN_AUTO_MIGRATE" default:"false"`
}

type SendgridConfig struct {
	Driver     string `envconfig:"MKITCHEN_EMAIL_DRIVER" default:"log"`
	APIKey     string `envconfig:"MKITCHEN_SENDGRID_API_KEY"`
	FromEmail  string `envconfig:"MKITCHEN_SENDGRID_FROM_EMAIL" default:"orders@mkitchen.com"`
	FromName   string `envconfig:"MKITCHEN_SENDGRID_FROM_NAME" default:"M Kitchen Order System"`
	AdminEmail string `envconfig:"MKITCHEN_ADMIN_EMAIL" default:"orders@mkitchen.com"`
	AdminName  string `envconfig:"MKITCHEN_ADMIN_NAME" default:"M Kitchen Admin"`
}

type TwilioConfig struct {
	Driver       string `envconfig:"MKITCHEN_SMS_DRIVER" default:"log"`
	AccountSID   string `envconfig:"MKITCHEN_TWILIO_ACCOUNT_SID"`
	AuthToken    string `envconfig:"MKITCHEN_TWILIO_AUTH_TOKEN"`
	FromNumber   string `envconfig:"MKITCHEN_TWILIO_FROM_NUMBER"`
	NotifyNumber string `envconfig:"MKITCHEN_SMS_NOTIFY_NUMBER"`
}

type AdminConfig struct {
	Token string `envconfig:"MKITCHEN_ADMIN_TOKEN"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MKITCHEN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RateLimitConfig struct {
	PlaceOrderWindow time.Duration `envconfig:"MKITCHEN_RATE_LIMIT_PLACE_ORDER_WINDOW" default:"1m"`
	PlaceOrderLimit  int           `envconfig:"MKITCHEN_RATE_LIMIT_PLACE_ORDER_LIMIT" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
