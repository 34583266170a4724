package config

// EnvPrefix is handed to envconfig; every field carries an explicit variable name.
const EnvPrefix = "MKITCHEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"
	StorageDriverMemory = "memory"
)

const (
	EnvAppEnv        = "MKITCHEN_APP_ENV"
	EnvPort          = "MKITCHEN_APP_PORT"
	EnvDBDSN         = "MKITCHEN_DB_DSN"
	EnvDBHost        = "MKITCHEN_DB_HOST"
	EnvDBUser        = "MKITCHEN_DB_USER"
	EnvDBName        = "MKITCHEN_DB_NAME"
	EnvRedisURL      = "MKITCHEN_REDIS_URL"
	EnvStorageDriver = "MKITCHEN_STORAGE_DRIVER"
	EnvSessionSecret = "MKITCHEN_SESSION_SECRET"
	EnvUseSQLite     = "MKITCHEN_USE_SQLITE"

	EnvNotificationTimeout = "MKITCHEN_CHECKOUT_NOTIFICATION_TIMEOUT"
	EnvPlacementLockTTL    = "MKITCHEN_CHECKOUT_PLACEMENT_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
