package config

// EnvPrefix is empty because every field spells out its full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvDBDSN        = "STOREFRONT_DB_DSN"
	EnvDBHost       = "STOREFRONT_DB_HOST"
	EnvDBUser       = "STOREFRONT_DB_USER"
	EnvDBName       = "STOREFRONT_DB_NAME"
	EnvDBPassword   = "STOREFRONT_DB_PASSWORD"
	EnvRedisURL     = "STOREFRONT_REDIS_URL"
	EnvJWTSecret    = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer    = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins   = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite    = "STOREFRONT_USE_SQLITE"
	EnvSQLitePath   = "STOREFRONT_SQLITE_PATH"
	EnvAutoMigrate  = "STOREFRONT_AUTO_MIGRATE"
	EnvRefreshToken = "STOREFRONT_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
