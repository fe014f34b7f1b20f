// Package sqlstore persists match analyses in SQLite or PostgreSQL through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver       string
	URL          string
	MaxOpenConns int
	BusyTimeout  time.Duration
}

// Open connects to the configured database and verifies the connection.
// SQLite handles are limited to one open connection.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := otelsqlx.Open(driver, dsn,
		otelsql.WithDBSystem(dbSystem(driver)),
		otelsql.WithDBName(dbNameFromURL(cfg.URL)),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	configurePool(db.DB, driver, cfg.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return db, nil
}

// openRaw opens a plain handle used by the migrator, which closes it.
func openRaw(cfg Config) (*sql.DB, string, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s database: %w", driver, err)
	}
	configurePool(db, driver, cfg.MaxOpenConns)
	return db, driver, nil
}

func configurePool(db *sql.DB, driver string, maxOpen int) {
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		return
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
}

func dataSource(cfg Config) (driver, dsn string, err error) {
	driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	raw := strings.TrimSpace(cfg.URL)
	if driver == "" {
		driver = driverFromURL(raw)
	}
	switch driver {
	case DriverSQLite, "sqlite3":
		return DriverSQLite, sqliteDSN(raw, cfg.BusyTimeout), nil
	case DriverPostgres, "postgresql":
		if raw == "" {
			return "", "", fmt.Errorf("postgres database url is required")
		}
		return DriverPostgres, raw, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func driverFromURL(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// sqliteDSN turns a path, "file:" or "sqlite://" url into a modernc DSN with
// foreign keys, WAL and a busy timeout enabled.
func sqliteDSN(raw string, busyTimeout time.Duration) string {
	path := raw
	for _, prefix := range []string{"sqlite://", "sqlite3://", "file:"} {
		path = strings.TrimPrefix(path, prefix)
	}
	query := ""
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path, query = path[:idx], path[idx+1:]
	}
	if path == "" {
		path = "soccer_analysis.db"
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		params = url.Values{}
	}
	pragmas := params["_pragma"]
	addPragma := func(name, value string) {
		for _, p := range pragmas {
			if strings.HasPrefix(p, name+"(") {
				return
			}
		}
		params.Add("_pragma", name+"("+value+")")
	}
	addPragma("foreign_keys", "1")
	addPragma("busy_timeout", fmt.Sprintf("%d", busyTimeout.Milliseconds()))
	if path != ":memory:" {
		addPragma("journal_mode", "WAL")
	}
	return "file:" + path + "?" + params.Encode()
}

func dbSystem(driver string) string {
	if driver == DriverPostgres {
		return "postgresql"
	}
	return "sqlite"
}

// dbNameFromURL reports the database name for trace attributes: the path of a
// postgres url, the dbname of a key/value DSN or the sqlite file name.
func dbNameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "dbname=") && !strings.Contains(raw, "://") {
		for _, part := range strings.Fields(raw) {
			if name, ok := strings.CutPrefix(part, "dbname="); ok {
				return strings.Trim(name, "'\"")
			}
		}
	}
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return strings.TrimPrefix(parsed.Path, "/")
	}

	path := raw
	for _, prefix := range []string{"sqlite://", "sqlite3://", "file:"} {
		path = strings.TrimPrefix(path, prefix)
	}
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		path = path[idx+1:]
	}
	return path
}

const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func formatQueryForTrace(query string) string {
	compact := strings.TrimSpace(queryWhitespaceRegex.ReplaceAllString(query, " "))
	if len(compact) <= maxTracedQueryLength {
		return compact
	}
	return compact[:maxTracedQueryLength] + "..."
}
