package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
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
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHIFA_APP_ENV" required:"true"`
	Port         string `envconfig:"CHIFA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHIFA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHIFA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CHIFA_DB_DSN"`
	Driver string `envconfig:"CHIFA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHIFA_DB_HOST"`
	LegacyPort     int    `envconfig:"CHIFA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHIFA_DB_USER"`
	LegacyPassword string `envconfig:"CHIFA_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHIFA_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHIFA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHIFA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHIFA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHIFA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHIFA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHIFA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHIFA_REDIS_ADDR"`
	Password     string        `envconfig:"CHIFA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHIFA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHIFA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHIFA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHIFA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHIFA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHIFA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CHIFA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CHIFA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CHIFA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CHIFA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CHIFA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CHIFA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CHIFA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CHIFA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CHIFA_ARGON_KEY_LEN" default:"32"`
}

// PricingConfig holds the cart business rules. The shipping fee applies when
// the subtotal is strictly below the free-shipping threshold.
type PricingConfig struct {
	ShippingFee           decimal.Decimal `envconfig:"CHIFA_SHIPPING_FEE" default:"5.00"`
	FreeShippingThreshold decimal.Decimal `envconfig:"CHIFA_FREE_SHIPPING_THRESHOLD" default:"50.00"`
	Currency              string          `envconfig:"CHIFA_CURRENCY" default:"PEN"`
}

func (p PricingConfig) validate() error {
	if p.ShippingFee.IsNegative() {
		return fmt.Errorf("shipping fee cannot be negative")
	}
	if p.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("free shipping threshold cannot be negative")
	}
	return nil
}

type CheckoutConfig struct {
	SubmitLockTTL time.Duration `envconfig:"CHIFA_CHECKOUT_SUBMIT_LOCK_TTL" default:"2m"`
	IntentTTL     time.Duration `envconfig:"CHIFA_CHECKOUT_INTENT_TTL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CHIFA_AUTO_MIGRATE" default:"false"`
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
