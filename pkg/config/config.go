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
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	Station      StationConfig
	Catalog      CatalogConfig
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
	Env          string `envconfig:"MIRS_APP_ENV" required:"true"`
	Port         string `envconfig:"MIRS_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"MIRS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MIRS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `envconfig:"MIRS_HTTP_READ_HEADER_TIMEOUT" default:"10s"`
	ShutdownTimeout   time.Duration `envconfig:"MIRS_HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins       []string      `envconfig:"MIRS_HTTP_CORS_ORIGINS" default:"http://localhost:3000"`
}

type DBConfig struct {
	DSN    string `envconfig:"MIRS_DB_DSN"`
	Driver string `envconfig:"MIRS_DB_DRIVER" default:"sqlite"`

	Host     string `envconfig:"MIRS_DB_HOST"`
	Port     int    `envconfig:"MIRS_DB_PORT" default:"5432"`
	User     string `envconfig:"MIRS_DB_USER"`
	Password string `envconfig:"MIRS_DB_PASSWORD"`
	Name     string `envconfig:"MIRS_DB_NAME"`
	SSLMode  string `envconfig:"MIRS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MIRS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MIRS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MIRS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MIRS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the station runs on the embedded SQLite store.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MIRS_REDIS_URL"`
	Address      string        `envconfig:"MIRS_REDIS_ADDR"`
	Password     string        `envconfig:"MIRS_REDIS_PASSWORD"`
	DB           int           `envconfig:"MIRS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MIRS_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"MIRS_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"MIRS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MIRS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"MIRS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis endpoint was configured. Stations run
// without Redis by default; idempotency replay is skipped in that case.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type StationConfig struct {
	ID          string `envconfig:"MIRS_STATION_ID"`
	Profile     string `envconfig:"MIRS_STATION_PROFILE"`
	OrgCode     string `envconfig:"MIRS_STATION_ORG_CODE"`
	DisplayName string `envconfig:"MIRS_STATION_NAME"`
}

type CatalogConfig struct {
	SeedPath   string `envconfig:"MIRS_CATALOG_SEED_PATH"`
	SeedOnBoot bool   `envconfig:"MIRS_CATALOG_SEED_ON_BOOT" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"MIRS_AUTO_MIGRATE" default:"true"`
	AutoProvision bool `envconfig:"MIRS_AUTO_PROVISION" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
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
