package config

// EnvPrefix is handed to envconfig; every field carries its full name in the
// envconfig tag so the prefix only matters for unset tags.
const EnvPrefix = "MIRS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:medical_inventory.db?_busy_timeout=5000&_foreign_keys=on"
)

const (
	EnvAppEnv   = "MIRS_APP_ENV"
	EnvPort     = "MIRS_APP_PORT"
	EnvLogLevel = "MIRS_LOG_LEVEL"

	EnvDBDSN    = "MIRS_DB_DSN"
	EnvDBDriver = "MIRS_DB_DRIVER"
	EnvDBHost   = "MIRS_DB_HOST"
	EnvDBUser   = "MIRS_DB_USER"
	EnvDBName   = "MIRS_DB_NAME"

	EnvRedisURL = "MIRS_REDIS_URL"

	EnvStationID      = "MIRS_STATION_ID"
	EnvStationProfile = "MIRS_STATION_PROFILE"
	EnvStationOrgCode = "MIRS_STATION_ORG_CODE"

	EnvCatalogSeedPath = "MIRS_CATALOG_SEED_PATH"
	EnvAutoProvision   = "MIRS_AUTO_PROVISION"
)

var postgresDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
