package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "defter"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "DEFTER_APP_ENV"
	EnvLogLevel = "DEFTER_LOG_LEVEL"
	EnvDBPath   = "DEFTER_DB_PATH"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Ledger LedgerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEFTER_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"DEFTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEFTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path        string        `envconfig:"DEFTER_DB_PATH" required:"true"`
	BusyTimeout time.Duration `envconfig:"DEFTER_DB_BUSY_TIMEOUT" default:"5s"`

	// SQLite is a single-writer store; the default pool size keeps all
	// in-process callers serialized on one connection.
	MaxOpenConns    int           `envconfig:"DEFTER_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"DEFTER_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"DEFTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEFTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// DSN renders the sqlite connection string. Foreign-key enforcement is a
// per-connection pragma in SQLite, so it rides on the DSN where every pooled
// connection picks it up.
func (db DBConfig) DSN() string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	if db.BusyTimeout > 0 {
		q.Set("_busy_timeout", strconv.FormatInt(db.BusyTimeout.Milliseconds(), 10))
	}
	return fmt.Sprintf("file:%s?%s", db.Path, q.Encode())
}

type LedgerConfig struct {
	// AllowOverpayment permits payments larger than the current book debt;
	// the remainder is carried as negative debt (prepaid credit).
	AllowOverpayment  bool  `envconfig:"DEFTER_LEDGER_ALLOW_OVERPAYMENT" default:"true"`
	DefaultTaxPercent int64 `envconfig:"DEFTER_LEDGER_DEFAULT_TAX_PERCENT" default:"20"`
}

func (l LedgerConfig) validate() error {
	if l.DefaultTaxPercent < 0 {
		return fmt.Errorf("DEFTER_LEDGER_DEFAULT_TAX_PERCENT must not be negative, got %d", l.DefaultTaxPercent)
	}
	return nil
}
