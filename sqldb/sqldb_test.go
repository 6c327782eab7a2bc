package sqldb_test

import (
	"os"
	"path/filepath"
	"testing"

	"movierating/pkg/config"
	"movierating/sqldb"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewConnection_SQLiteCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "movies.db")

	db, err := sqldb.NewConnection(sqldb.Options{Driver: sqldb.DriverSQLite, DBName: path})
	require.NoError(t, err)
	t.Cleanup(func() { closeDB(db) })
	MigrateTestDatabase(t, db)

	_, err = os.Stat(path)
	assert.NoError(t, err, "sqlite file should exist after migrating")
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	_, err := sqldb.NewConnection(sqldb.Options{Driver: "oracle", DBName: "movies"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewConnection_Error(t *testing.T) {
	// Use invalid options to force a connection failure
	opts := sqldb.Options{
		Driver:   sqldb.DriverPostgres,
		DBName:   "nonexistent",
		DBUser:   "invaliduser",
		Password: "wrongpass",
		Host:     "invalidhost", // Non-existent host to ensure failure
		Port:     "5432",
		SSLMode:  true,
	}

	_, err := sqldb.NewConnection(opts)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Driver = "postgres"
	cfg.DB.Name = "movies"
	cfg.DB.Host = "db"
	cfg.DB.Port = 5433
	cfg.DB.User = "app"
	cfg.DB.Pass = "secret"
	cfg.DB.EnableSSL = true
	cfg.DB.MaxOpenConns = 20
	cfg.DB.MaxIdleConns = 4
	cfg.DB.LogQueries = true

	opts := sqldb.OptionsFromConfig(cfg)

	assert.Equal(t, sqldb.Options{
		Driver:       "postgres",
		DBName:       "movies",
		DBUser:       "app",
		Password:     "secret",
		Host:         "db",
		Port:         "5433",
		SSLMode:      true,
		MaxOpenConns: 20,
		MaxIdleConns: 4,
		LogQueries:   true,
	}, opts)

	assert.Empty(t, sqldb.OptionsFromConfig(&config.Config{}).Port, "unset port is left to the driver default")
}

func TestMigrationDialect(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "", want: "sqlite3"},
		{driver: "sqlite", want: "sqlite3"},
		{driver: "SQLite3", want: "sqlite3"},
		{driver: "postgres", want: "postgres"},
		{driver: "mysql", want: "mysql"},
		{driver: "mongo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := sqldb.MigrationDialect(tt.driver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrate_IsIdempotentAndReversible(t *testing.T) {
	db := CreateConnection(t)

	applied, err := sqldb.Migrate(db, sqldb.DriverSQLite, migrate.Up)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = sqldb.Migrate(db, sqldb.DriverSQLite, migrate.Up)
	require.NoError(t, err)
	assert.Zero(t, applied, "second run should be a no-op")
	assert.True(t, db.Migrator().HasTable("movies"))

	reverted, err := sqldb.Migrate(db, sqldb.DriverSQLite, migrate.Down)
	require.NoError(t, err)
	assert.Equal(t, 1, reverted)
	assert.False(t, db.Migrator().HasTable("movies"))
}

func MigrateTestDatabase(t testing.TB, db *gorm.DB) {
	t.Helper()

	_, err := sqldb.Migrate(db, sqldb.DriverSQLite, migrate.Up)
	require.NoError(t, err)
}

// CreateConnection opens a fresh sqlite file under the test's temp dir.
func CreateConnection(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := sqldb.NewConnection(sqldb.Options{
		Driver: sqldb.DriverSQLite,
		DBName: filepath.Join(t.TempDir(), "movies.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { closeDB(db) })

	return db
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}
