package sqldb

import (
	"fmt"

	"movierating/migrations"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

// Migrate applies the embedded migrations for driver in the given direction
// and returns how many were applied.
func Migrate(db *gorm.DB, driver string, dir migrate.MigrationDirection) (int, error) {
	dialect, err := MigrationDialect(driver)
	if err != nil {
		return 0, err
	}

	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations.FS,
		Root:       driverName(driver),
	}

	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("get db instance: %w", err)
	}

	total, err := migrate.Exec(sqlDB, dialect, source, dir)
	if err != nil {
		return total, fmt.Errorf("execute migrations: %w", err)
	}
	return total, nil
}
