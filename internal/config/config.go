package config

import (
	"io/ioutil"
	"os"

	"github.com/ansel1/merry"
	"github.com/fpawel/plu/internal/migrate"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

const (
	EnvDriver = "PLU_DB_DRIVER"
	EnvDSN    = "PLU_DB_DSN"
)

type Config struct {
	Driver      string `toml:"driver" comment:"sql driver: sqlite3 or postgres"`
	DSN         string `toml:"dsn" comment:"data source name passed to the driver"`
	LedgerTable string `toml:"ledger_table" comment:"table recording the applied schema changes"`
	LogLevel    string `toml:"log_level" comment:"log level: dbg, inf, wrn or err"`
}

func Default() Config {
	return Config{
		Driver:      "sqlite3",
		DSN:         "plu.sqlite?_txlock=immediate",
		LedgerTable: migrate.DefaultLedgerTable,
		LogLevel:    "inf",
	}
}

// Load reads filename, writing it with the defaults first when it does not
// exist. Variables from .env and the environment override the file.
func Load(filename string) (Config, error) {
	c := Default()
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		if err := Save(filename, c); err != nil {
			return Config{}, err
		}
	}
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, merry.Wrap(err)
	}
	if err := toml.Unmarshal(b, &c); err != nil {
		return Config{}, merry.Prependf(err, "%s", filename)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, merry.Prepend(err, ".env")
	}
	c.applyEnv()
	if c.Driver == "" || c.DSN == "" {
		return Config{}, merry.Errorf("%s: driver and dsn must be set", filename)
	}
	return c, nil
}

func Save(filename string, c Config) error {
	b, err := toml.Marshal(c)
	if err != nil {
		return merry.Wrap(err)
	}
	return merry.Wrap(ioutil.WriteFile(filename, b, 0666))
}

func (c *Config) applyEnv() {
	if s, ok := os.LookupEnv(EnvDriver); ok {
		c.Driver = s
	}
	if s, ok := os.LookupEnv(EnvDSN); ok {
		c.DSN = s
	}
}
