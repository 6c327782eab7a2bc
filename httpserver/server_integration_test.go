package httpserver_test

import (
	"path/filepath"
	"testing"

	"movierating/httpserver"
	"movierating/movie"
	"movierating/sqldb"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func MustCreateServer(t testing.TB, db *gorm.DB) *httpserver.Server {
	t.Helper()

	movieService := movie.NewUsecase(sqldb.NewMovieRepository(db))

	server := httpserver.Default(testConfig())
	server.MovieService = movieService

	return server
}

// MustCreateTestDatabase opens a migrated sqlite file that lives for the
// duration of the test.
func MustCreateTestDatabase(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := sqldb.NewConnection(sqldb.Options{
		Driver: sqldb.DriverSQLite,
		DBName: filepath.Join(t.TempDir(), "data", "movies.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	_, err = sqldb.Migrate(db, sqldb.DriverSQLite, migrate.Up)
	require.NoError(t, err)
	return db
}
