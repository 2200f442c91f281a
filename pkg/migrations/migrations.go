package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Close() (sourceErr error, databaseErr error)
}

var driverFactory = func(db *sql.DB, cfg Config) (database.Driver, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: cfg.MigrationsTable})
	default:
		return postgres.WithInstance(db, &postgres.Config{MigrationsTable: cfg.MigrationsTable})
	}
}

var migratorFactory = func(sourceURL string, databaseName string, driver database.Driver) (migrator, error) {
	return migrate.NewWithDatabaseInstance(sourceURL, databaseName, driver)
}

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Config struct {
	// Dir holds the versioned *.up.sql/*.down.sql files. Defaults to migrations/<driver>.
	Dir             string
	MigrationsTable string
	// Driver is "postgres" (default) or "sqlite".
	Driver string
	Logger Logger
}

// Status reports the schema version recorded in the migrations table.
type Status struct {
	Version uint
	Dirty   bool
	// Pending is true when no migration has ever been applied.
	Pending bool
}

func (c Config) withDefaults() (Config, error) {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "":
		c.Driver = DriverPostgres
	case DriverPostgres, DriverSQLite:
	default:
		return c, fmt.Errorf("migrations: unsupported driver %q", c.Driver)
	}

	if strings.TrimSpace(c.Dir) == "" {
		c.Dir = filepath.Join("migrations", c.Driver)
	}
	if strings.TrimSpace(c.MigrationsTable) == "" {
		c.MigrationsTable = "schema_migrations"
	}
	return c, nil
}

func sourceURLFor(dir string) (string, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("migrations: resolve dir: %w", err)
	}

	// ToSlash keeps Windows paths valid inside a file:// URL.
	sourceURL := (&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absDir),
	}).String()

	return sourceURL, absDir, nil
}

func open(ctx context.Context, db *sql.DB, cfg Config) (migrator, Config, string, error) {
	if db == nil {
		return nil, cfg, "", fmt.Errorf("migrations: db is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, cfg, "", err
	}

	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, cfg, "", err
	}

	sourceURL, absDir, err := sourceURLFor(cfg.Dir)
	if err != nil {
		return nil, cfg, "", err
	}

	driver, err := driverFactory(db, cfg)
	if err != nil {
		return nil, cfg, "", fmt.Errorf("migrations: %s driver: %w", cfg.Driver, err)
	}

	m, err := migratorFactory(sourceURL, cfg.Driver, driver)
	if err != nil {
		return nil, cfg, "", fmt.Errorf("migrations: init: %w", err)
	}

	return m, cfg, absDir, nil
}

func closer(m migrator, logger Logger) func() {
	closeOnce := sync.Once{}
	return func() {
		closeOnce.Do(func() {
			srcErr, dbErr := m.Close()
			if logger != nil {
				if srcErr != nil {
					logger.Warn("Migrations source close error", "error", srcErr)
				}
				if dbErr != nil {
					logger.Warn("Migrations db close error", "error", dbErr)
				}
			}
		})
	}
}

// Up applies every pending migration in cfg.Dir.
//
// The sqlite driver closes db when the migrator is closed, so sqlite callers
// must open a fresh handle afterwards. The postgres driver leaves db open.
func Up(ctx context.Context, db *sql.DB, cfg Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	m, cfg, absDir, err := open(ctx, db, cfg)
	if err != nil {
		return err
	}
	closeMigrator := closer(m, cfg.Logger)
	defer closeMigrator()

	if cfg.Logger != nil {
		cfg.Logger.Info("Running SQL migrations", "dir", absDir, "table", cfg.MigrationsTable, "driver", cfg.Driver)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.Up()
	}()

	select {
	case <-ctx.Done():
		// migrate has no context support; closing interrupts it best-effort.
		closeMigrator()
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				if cfg.Logger != nil {
					cfg.Logger.Info("No migrations to apply")
				}
				return nil
			}
			return fmt.Errorf("migrations: up: %w", err)
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("Migrations applied successfully")
	}
	return nil
}

// CurrentStatus reads the applied schema version without changing anything.
// Like Up, it closes db when cfg.Driver is sqlite.
func CurrentStatus(ctx context.Context, db *sql.DB, cfg Config) (Status, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	m, cfg, _, err := open(ctx, db, cfg)
	if err != nil {
		return Status{}, err
	}
	defer closer(m, cfg.Logger)()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Pending: true}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("migrations: version: %w", err)
	}

	return Status{Version: version, Dirty: dirty}, nil
}
