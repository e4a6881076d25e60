package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const envPrefix = "LARA"

// DevJWTSecret is used by the memory driver when no secret is configured.
const DevJWTSecret = "lara-dev-secret"

// SQLMoneyScale is the number of decimal places the SQL schemas keep for
// prices and totals.
const SQLMoneyScale = 2

const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	AppPort           string        `envconfig:"APP_PORT" default:"8080"`
	StoreDriver       string        `envconfig:"STORE_DRIVER" default:"memory"`
	MySQLDSN          string        `envconfig:"MYSQL_DSN"`
	PGDSN             string        `envconfig:"PG_DSN"`
	IDPJWTSecret      string        `envconfig:"IDP_JWT_SECRET"`
	IDPIssuer         string        `envconfig:"IDP_ISSUER"`
	CurrencyPrecision int32         `envconfig:"CURRENCY_PRECISION" default:"2"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"text"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	SeedCatalog       bool          `envconfig:"SEED_CATALOG" default:"false"`
}

// Load reads an optional .env file and then the LARA_* environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
		if c.IDPJWTSecret == "" {
			c.IDPJWTSecret = DevJWTSecret
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return errors.New("LARA_MYSQL_DSN is required for the mysql driver")
		}
	case DriverPostgres:
		if c.PGDSN == "" {
			return errors.New("LARA_PG_DSN is required for the postgres driver")
		}
	default:
		return errors.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.IDPJWTSecret == "" {
		return errors.New("LARA_IDP_JWT_SECRET is required")
	}
	if c.CurrencyPrecision < 0 {
		return errors.Errorf("currency precision must be >= 0, got %d", c.CurrencyPrecision)
	}
	if c.StoreDriver != DriverMemory && c.CurrencyPrecision > SQLMoneyScale {
		return errors.Errorf("currency precision %d exceeds the %s money scale of %d", c.CurrencyPrecision, c.StoreDriver, SQLMoneyScale)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// DSN returns the connection string for the configured SQL driver.
func (c *Config) DSN() string {
	if c.StoreDriver == DriverPostgres {
		return c.PGDSN
	}
	return c.MySQLDSN
}

func (c *Config) UsesDevSecret() bool {
	return c.IDPJWTSecret == DevJWTSecret
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}
