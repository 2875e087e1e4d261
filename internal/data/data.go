package data

import (
	"context"
	"database/sql"

	"github.com/ansel1/merry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the database. A sqlite3 database is served by a single
// connection, so in-memory databases are shared by every statement.
func Open(driver, dsn string) (*sqlx.DB, error) {
	if driver == "sqlite3" {
		return openSqliteDBx(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, merry.Appendf(err, "open %s database", driver)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, merry.Appendf(err, "ping %s database", driver)
	}
	return db, nil
}

// WithTx runs work in a transaction, committing when work returns nil.
func WithTx(ctx context.Context, db *sqlx.DB, work func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return merry.Append(err, "begin transaction")
	}
	if err := work(tx); err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			return merry.Append(err, "rollback: "+errRollback.Error())
		}
		return err
	}
	return merry.Wrap(tx.Commit())
}

func openSqliteDB(fileName string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", fileName)
	if err != nil {
		return nil, err
	}
	conn.SetMaxIdleConns(1)
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	return conn, err
}

func openSqliteDBx(fileName string) (*sqlx.DB, error) {
	conn, err := openSqliteDB(fileName)
	if err != nil {
		return nil, merry.Append(err, "open sqlite3 database")
	}
	return sqlx.NewDb(conn, "sqlite3"), nil
}
