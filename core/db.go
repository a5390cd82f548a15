package core

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

// InitDB connects to the database named by DATABASE_URL. Postgres URLs
// (postgres:// or postgresql://) use the postgres driver; sqlite:// URLs open
// a local file, which is the default when no URL is set.
func InitDB() (*gorm.DB, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = "sqlite://secwatch.db"
	}

	var gormDB *gorm.DB
	var err error
	switch {
	case strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://"):
		gormDB, err = gorm.Open(postgres.Open(url), &gorm.Config{})
	case strings.HasPrefix(url, "sqlite://"):
		gormDB, err = gorm.Open(sqlite.Open(strings.TrimPrefix(url, "sqlite://")), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %v", url)
	}
	if err != nil {
		return nil, err
	}

	db = gormDB

	return db, nil
}

// SetDB overrides the database connection. Tests use it to point GetDB at an
// in-memory database.
func SetDB(gormDB *gorm.DB) {
	db = gormDB
}

func GetDB() (*gorm.DB, error) {
	if db == nil {
		return InitDB()
	}

	return db, nil
}
