package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for unannotated additions.
const EnvPrefix = "STOREHUB"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const CacheBackendRedis = "redis"

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv   = "STOREHUB_APP_ENV"
	EnvPort     = "STOREHUB_APP_PORT"
	EnvDBDSN    = "STOREHUB_DB_DSN"
	EnvDBHost   = "STOREHUB_DB_HOST"
	EnvDBUser   = "STOREHUB_DB_USER"
	EnvDBName   = "STOREHUB_DB_NAME"
	EnvRedisURL = "STOREHUB_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
