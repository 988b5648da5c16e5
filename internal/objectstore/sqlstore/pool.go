package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/logger"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 10 * time.Minute
)

//go:embed migrations
var migrationsFS embed.FS

// buildPool opens the *sql.DB for d and verifies the connection.
func buildPool(ctx context.Context, d *dialect, dsn string) (*sql.DB, error) {
	if d == dialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("failed to open %s", d.name), err)
	}

	if d == dialectSQLite {
		// Single writer; SQLite serialises writes anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
	}
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		err = mapError(err)
		if errs.IsOperationFailed(err) {
			err = errs.Wrap(errs.ErrKindConnectionFailed, fmt.Sprintf("cannot reach %s", d.name), err)
		}
		return nil, err
	}
	return db, nil
}

// sqliteDSN turns a bare file path into a DSN with the pragmas every
// connection needs. DSNs that already start with "file:" are kept as is.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
		path,
	)
}

// migrate applies the embedded schema migrations of d.
func migrate(ctx context.Context, db *sql.DB, d *dialect, log *logger.Logger) error {
	sub, err := fs.Sub(migrationsFS, "migrations/"+d.name)
	if err != nil {
		return errs.Wrap(errs.ErrKindOperationFailed, "sqlstore: creating migration sub-filesystem", err)
	}

	provider, err := goose.NewProvider(d.goose, db, sub)
	if err != nil {
		return errs.Wrap(errs.ErrKindOperationFailed, "sqlstore: creating migration provider", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrKindOperationFailed, "sqlstore: running migrations", err)
	}

	for _, r := range results {
		log.InfoWith("applied migration", map[string]interface{}{
			"dialect":     d.name,
			"source":      r.Source.Path,
			"duration_ms": r.Duration.Milliseconds(),
		})
	}
	return nil
}
