package repository

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultPingTimeout = 5 * time.Second
	migrationsRoot     = "data/sql/migrations"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

func init() {
	persistence.RegisterModel((*Account)(nil))
	persistence.RegisterModel((*Post)(nil))
}

// dbConfig satisfies the persistence client configuration
type dbConfig struct {
	driver string
	dsn    string
	debug  bool
}

func (c dbConfig) GetDebug() bool                { return c.debug }
func (c dbConfig) GetDriver() string             { return c.driver }
func (c dbConfig) GetServer() string             { return c.dsn }
func (c dbConfig) GetPingTimeout() time.Duration { return defaultPingTimeout }
func (c dbConfig) GetOtelIdentifier() string     { return "authgate" }

// Open connects to dsn. postgres:// and postgresql:// DSNs use the
// Postgres driver, anything else is treated as a SQLite DSN.
func Open(dsn string, debug bool) (*persistence.Client, error) {
	cfg := dbConfig{dsn: dsn, debug: debug}

	var (
		sqldb   *sql.DB
		dialect schema.Dialect
	)
	if isPostgres(dsn) {
		cfg.driver = DriverPostgres
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		sqldb.SetMaxOpenConns(25)
		sqldb.SetMaxIdleConns(25)
		dialect = pgdialect.New()
	} else {
		cfg.driver = DriverSQLite
		var err error
		sqldb, err = sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open sqlite database")
		}
		sqldb.SetMaxOpenConns(1)
		dialect = sqlitedialect.New()
	}

	client, err := persistence.New(cfg, sqldb, dialect)
	if err != nil {
		_ = sqldb.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create persistence client")
	}

	if debug {
		client.DB().AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := client.DB().Ping(); err != nil {
		_ = client.DB().Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to connect to database")
	}

	return client, nil
}

// Migrate applies the embedded account and post migrations for the
// dialect of client
func Migrate(ctx context.Context, client *persistence.Client) error {
	migrations, err := fs.Sub(migrationsFS, migrationsRoot)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load migrations")
	}

	client.RegisterDialectMigrations(
		migrations,
		persistence.WithDialectSourceLabel(migrationsRoot),
		persistence.WithValidationTargets(DriverPostgres, DriverSQLite),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "invalid migrations")
	}

	if err := client.Migrate(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to migrate database")
	}
	return nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
