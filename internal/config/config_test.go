package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
	return dir
}

func TestLoadCreatesDefault(t *testing.T) {
	dir := inTempDir(t)
	filename := filepath.Join(dir, "config.toml")

	c, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	b, err := ioutil.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(b), `driver = "sqlite3"`)
	require.Contains(t, string(b), `ledger_table = "schema_migrations"`)
}

func TestLoadFile(t *testing.T) {
	dir := inTempDir(t)
	filename := filepath.Join(dir, "config.toml")
	require.NoError(t, ioutil.WriteFile(filename, []byte(`
driver = "postgres"
dsn = "host=localhost dbname=plu sslmode=disable"
ledger_table = "ledger"
log_level = "dbg"
`), 0666))

	c, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, Config{
		Driver:      "postgres",
		DSN:         "host=localhost dbname=plu sslmode=disable",
		LedgerTable: "ledger",
		LogLevel:    "dbg",
	}, c)

	require.NoError(t, ioutil.WriteFile(filename, []byte(`driver = [`), 0666))
	_, err = Load(filename)
	require.Error(t, err)

	require.NoError(t, ioutil.WriteFile(filename, []byte(`dsn = ""`), 0666))
	_, err = Load(filename)
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := inTempDir(t)
	filename := filepath.Join(dir, "config.toml")
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, ".env"),
		[]byte(EnvDSN+"=from-dotenv.sqlite\n"), 0666))
	t.Setenv(EnvDriver, "postgres")
	t.Cleanup(func() { _ = os.Unsetenv(EnvDSN) })

	c, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, "postgres", c.Driver)
	require.Equal(t, "from-dotenv.sqlite", c.DSN)
}
