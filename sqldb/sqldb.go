package sqldb

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"movierating/pkg/config"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Options struct {
	Driver   string
	DBName   string
	DBUser   string
	Password string
	Host     string
	Port     string
	SSLMode  bool

	MaxOpenConns int
	MaxIdleConns int
	LogQueries   bool
}

// OptionsFromConfig maps the DB_* settings onto connection options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Driver:       cfg.DB.Driver,
		DBName:       cfg.DB.Name,
		DBUser:       cfg.DB.User,
		Password:     cfg.DB.Pass,
		Host:         cfg.DB.Host,
		SSLMode:      cfg.DB.EnableSSL,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		LogQueries:   cfg.DB.LogQueries,
	}
	if cfg.DB.Port > 0 {
		opts.Port = strconv.Itoa(cfg.DB.Port)
	}
	return opts
}

// NewConnection opens the process-wide connection pool. For sqlite DBName is
// a file path; its directory is created when missing.
func NewConnection(opts Options) (*gorm.DB, error) {
	dialector, err := newDialector(opts)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if opts.LogQueries {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driverName(opts.Driver) == DriverSQLite {
		// one writer at a time; sqlite would otherwise answer SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}

	return db, nil
}

func newDialector(opts Options) (gorm.Dialector, error) {
	switch driverName(opts.Driver) {
	case DriverSQLite:
		if err := prepareSQLiteDir(opts.DBName); err != nil {
			return nil, err
		}
		return sqlite.Open(sqliteDSN(opts.DBName)), nil
	case DriverPostgres:
		sslmode := "disable"
		if opts.SSLMode {
			sslmode = "require"
		}
		datasource := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			opts.Host, portOr(opts.Port, "5432"), opts.DBUser, opts.Password, opts.DBName, sslmode,
		)
		return postgres.Open(datasource), nil
	case DriverMySQL:
		tls := "false"
		if opts.SSLMode {
			tls = "true"
		}
		datasource := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&tls=%s",
			opts.DBUser, opts.Password, opts.Host, portOr(opts.Port, "3306"), opts.DBName, tls,
		)
		return mysql.Open(datasource), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// MigrationDialect maps a driver name to the sql-migrate dialect.
func MigrationDialect(driver string) (string, error) {
	switch driverName(driver) {
	case DriverSQLite:
		return "sqlite3", nil
	case DriverPostgres:
		return "postgres", nil
	case DriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func driverName(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	if d == "" || d == "sqlite3" {
		return DriverSQLite
	}
	return d
}

func portOr(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func prepareSQLiteDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory %s: %w", dir, err)
	}
	return nil
}
