package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Tenancy       TenancyConfig
	Subscription  SubscriptionConfig
	RateLimit     RateLimitConfig
	Notifications NotificationsConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
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
	Env          string `envconfig:"STOREHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOREHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREHUB_DB_DSN"`
	Driver string `envconfig:"STOREHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREHUB_DB_USER"`
	LegacyPassword string `envconfig:"STOREHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREHUB_REDIS_URL"`
	Address      string        `envconfig:"STOREHUB_REDIS_ADDR"`
	Password     string        `envconfig:"STOREHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TenancyConfig drives hostname resolution and the tenant snapshot cache.
type TenancyConfig struct {
	BaseDomain        string        `envconfig:"STOREHUB_TENANCY_BASE_DOMAIN" default:"storehub.app"`
	DefaultRoutingKey string        `envconfig:"STOREHUB_TENANCY_DEFAULT_ROUTING_KEY" default:"demo"`
	LocalHostnames    []string      `envconfig:"STOREHUB_TENANCY_LOCAL_HOSTNAMES" default:"localhost,127.0.0.1,0.0.0.0"`
	CacheBackend      string        `envconfig:"STOREHUB_TENANCY_CACHE_BACKEND" default:"redis"`
	CacheTTL          time.Duration `envconfig:"STOREHUB_TENANCY_CACHE_TTL" default:"5m"`
}

// UsesRedisCache reports whether the tenant cache should ride on Redis.
func (t TenancyConfig) UsesRedisCache() bool {
	return strings.EqualFold(strings.TrimSpace(t.CacheBackend), CacheBackendRedis)
}

// SubscriptionConfig drives the lifecycle sweep.
type SubscriptionConfig struct {
	GracePeriodDays int           `envconfig:"STOREHUB_SUBSCRIPTION_GRACE_PERIOD_DAYS" default:"7"`
	SweepSecret     string        `envconfig:"STOREHUB_SWEEP_SECRET"`
	SweepInterval   time.Duration `envconfig:"STOREHUB_SWEEP_INTERVAL" default:"24h"`
	SweepBatchSize  int           `envconfig:"STOREHUB_SWEEP_BATCH_SIZE" default:"500"`
}

type RateLimitConfig struct {
	RegisterWindow         time.Duration `envconfig:"STOREHUB_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit        int           `envconfig:"STOREHUB_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	RegisterSubdomainLimit int           `envconfig:"STOREHUB_RATE_LIMIT_REGISTER_SUBDOMAIN_LIMIT" default:"3"`
}

type NotificationsConfig struct {
	Topic     string `envconfig:"STOREHUB_PUBSUB_TENANT_EVENTS_TOPIC"`
	QueueSize int    `envconfig:"STOREHUB_NOTIFICATIONS_QUEUE_SIZE" default:"256"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOREHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOREHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOREHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == DriverSQLite {
		db.DSN = "file::memory:?cache=shared"
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
