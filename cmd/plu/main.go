package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ansel1/merry"
	"github.com/fatih/color"
	"github.com/fpawel/plu/internal/config"
	"github.com/fpawel/plu/internal/data"
	"github.com/fpawel/plu/internal/migrate"
	"github.com/fpawel/plu/internal/schema"
	"github.com/jmoiron/sqlx"
	"github.com/powerman/structlog"
	"gopkg.in/yaml.v3"
)

func main() {
	log := structlog.New()

	action := flag.String("a", "status", `what to do:
 - up : apply pending schema changes
 - down : revert the last applied schema change, dropping its table and rows
 - status : list schema changes
 - import : insert the reglements of the YAML file given by -f`)
	configFile := flag.String("config", "config.toml", "configuration file, created with defaults when missing")
	importFile := flag.String("f", "", "YAML file with a list of reglements, for -a=import")
	flag.Parse()

	conf, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLogLevel(structlog.ParseLevel(conf.LogLevel))
	log = logPrependSuffixKeys(log, "action", *action, "driver", conf.Driver)

	db, err := data.Open(conf.Driver, conf.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer log.ErrIfFail(db.Close)

	runner, err := migrate.NewRunner(db, log, migrate.Config{
		LedgerTable: conf.LedgerTable,
		Changes:     []schema.Change{schema.CreatePluReglements},
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	switch *action {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "status":
		err = printStatus(ctx, runner)
	case "import":
		err = importReglements(ctx, db, *importFile)
		if err == nil {
			log.Info("imported", "file", *importFile)
		}
	default:
		flag.PrintDefaults()
		err = merry.Errorf("invalid parameter: -a=%q", *action)
	}
	if err != nil {
		log.PrintErr(err)
		log.ErrIfFail(db.Close)
		os.Exit(1)
	}
}

func printStatus(ctx context.Context, runner *migrate.Runner) error {
	xs, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	applied := color.New(color.FgGreen).SprintFunc()
	pending := color.New(color.FgYellow).SprintFunc()
	for _, x := range xs {
		if x.Applied {
			fmt.Printf("%s  %s  %s\n", applied("applied"), x.Change, x.AppliedAt.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Printf("%s  %s\n", pending("pending"), x.Change)
		}
	}
	return nil
}

func importReglements(ctx context.Context, db *sqlx.DB, filename string) error {
	if filename == "" {
		return merry.New("-f is required for -a=import")
	}
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return merry.Wrap(err)
	}
	var rs []data.Reglement
	if err := yaml.Unmarshal(b, &rs); err != nil {
		return merry.Prepend(err, filename)
	}
	return data.InsertAll(ctx, db, rs)
}

func init() {
	structlog.DefaultLogger.
		SetLogLevel(structlog.INF).
		SetPrefixKeys(
			structlog.KeyApp, structlog.KeyPID, structlog.KeyLevel, structlog.KeyUnit, structlog.KeyTime,
		).
		SetDefaultKeyvals(
			structlog.KeyApp, filepath.Base(os.Args[0]),
			structlog.KeySource, structlog.Auto,
		).
		SetSuffixKeys(
			structlog.KeyStack,
		).
		SetSuffixKeys(structlog.KeySource).
		SetKeysFormat(map[string]string{
			structlog.KeyTime:   " %[2]s",
			structlog.KeySource: " %6[2]s",
			structlog.KeyUnit:   " %6[2]s",
		}).SetTimeFormat("15:04:05")
}

func logPrependSuffixKeys(log *structlog.Logger, args ...interface{}) *structlog.Logger {
	var keys []string
	for i, arg := range args {
		if i%2 == 0 {
			k, ok := arg.(string)
			if !ok {
				panic("key must be string")
			}
			keys = append(keys, k)
		}
	}
	return log.New(args...).PrependSuffixKeys(keys...)
}
