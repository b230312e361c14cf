package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens the configured database.
func OpenDB(c *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Database.Driver {
	case "postgres":
		dialector = postgres.Open(c.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(c.Database.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", c.Database.Driver, err)
	}
	return db, nil
}
