package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/cart"
)

type Config struct {
	App          AppConfig
	Amount       AmountConfig
	Cart         CartConfig
	Backend      BackendConfig
	DB           DBConfig
	Redis        RedisConfig
	Orders       OrdersConfig
	Storefront   StorefrontConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Amount.validate(); err != nil {
		return nil, err
	}
	if cfg.Cart.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("%s must not be negative", EnvDeliveryFee)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PIZZERIA_APP_ENV" required:"true"`
	Port         string `envconfig:"PIZZERIA_APP_PORT" default:"3131"`
	LogLevel     string `envconfig:"PIZZERIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PIZZERIA_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"PIZZERIA_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AmountConfig holds the bounds shared by every quantity widget.
type AmountConfig struct {
	DefaultValue int `envconfig:"PIZZERIA_AMOUNT_DEFAULT" default:"1"`
	Min          int `envconfig:"PIZZERIA_AMOUNT_MIN" default:"1"`
	Max          int `envconfig:"PIZZERIA_AMOUNT_MAX" default:"9"`
}

// Settings builds the immutable counter settings.
func (a AmountConfig) Settings() amount.Settings {
	return amount.Settings{Default: a.DefaultValue, Min: a.Min, Max: a.Max}
}

func (a AmountConfig) validate() error {
	if a.Min > a.Max {
		return fmt.Errorf("%s (%d) exceeds %s (%d)", EnvAmountMin, a.Min, EnvAmountMax, a.Max)
	}
	return nil
}

type CartConfig struct {
	DeliveryFee decimal.Decimal `envconfig:"PIZZERIA_CART_DELIVERY_FEE" default:"20"`
}

// Settings builds the cart settings; line counters share the amount bounds.
func (c CartConfig) Settings(a AmountConfig) cart.Settings {
	return cart.Settings{DeliveryFee: c.DeliveryFee, Amount: a.Settings()}
}

// BackendConfig points the storefront at a remote product/order service.
// An empty URL keeps the storefront wired to the in-process backend.
type BackendConfig struct {
	URL         string        `envconfig:"PIZZERIA_BACKEND_URL"`
	ProductPath string        `envconfig:"PIZZERIA_BACKEND_PRODUCT_PATH" default:"product"`
	OrderPath   string        `envconfig:"PIZZERIA_BACKEND_ORDER_PATH" default:"order"`
	Timeout     time.Duration `envconfig:"PIZZERIA_BACKEND_TIMEOUT" default:"10s"`
}

// Remote reports whether a remote backend is configured.
func (b BackendConfig) Remote() bool {
	return strings.TrimSpace(b.URL) != ""
}

// Endpoint joins the backend URL with the given resource path.
func (b BackendConfig) Endpoint(path string) string {
	return strings.TrimRight(b.URL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (b BackendConfig) validate() error {
	if !b.Remote() {
		return nil
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvBackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvBackendURL)
	}
	return nil
}

type DBConfig struct {
	DSN    string `envconfig:"PIZZERIA_DB_DSN"`
	Driver string `envconfig:"PIZZERIA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PIZZERIA_DB_HOST"`
	Port     int    `envconfig:"PIZZERIA_DB_PORT" default:"5432"`
	User     string `envconfig:"PIZZERIA_DB_USER"`
	Password string `envconfig:"PIZZERIA_DB_PASSWORD"`
	Name     string `envconfig:"PIZZERIA_DB_NAME"`
	SSLMode  string `envconfig:"PIZZERIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PIZZERIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PIZZERIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PIZZERIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PIZZERIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PIZZERIA_REDIS_URL"`
	Address      string        `envconfig:"PIZZERIA_REDIS_ADDR"`
	Password     string        `envconfig:"PIZZERIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"PIZZERIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PIZZERIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PIZZERIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PIZZERIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PIZZERIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PIZZERIA_REDIS_WRITE_TIMEOUT" default:"5s"`
	CatalogTTL   time.Duration `envconfig:"PIZZERIA_REDIS_CATALOG_TTL" default:"24h"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// OrdersConfig tunes the order placement endpoints. Both protections need
// redis and are skipped without it.
type OrdersConfig struct {
	IdempotencyTTL  time.Duration `envconfig:"PIZZERIA_ORDERS_IDEMPOTENCY_TTL" default:"24h"`
	RateLimitWindow time.Duration `envconfig:"PIZZERIA_ORDERS_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"PIZZERIA_ORDERS_RATE_LIMIT_PER_IP" default:"20"`
}

// StorefrontConfig bounds the in-memory shopper sessions.
type StorefrontConfig struct {
	SessionIdleTTL time.Duration `envconfig:"PIZZERIA_STOREFRONT_SESSION_IDLE_TTL" default:"30m"`
	MaxSessions    int           `envconfig:"PIZZERIA_STOREFRONT_MAX_SESSIONS" default:"1000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool   `envconfig:"PIZZERIA_AUTO_MIGRATE" default:"false"`
	SeedFile    string `envconfig:"PIZZERIA_SEED_FILE"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:pizzeria.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
