package config

import (
	"fmt"
	"strings"

	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

var DB *gorm.DB

// OpenDatabase opens PostgreSQL, or SQLite when databaseURL starts with sqlite://
func OpenDatabase(databaseURL string, silent bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, sqlitePrefix))
	} else {
		dialector = postgres.Open(databaseURL)
	}

	gormConfig := &gorm.Config{}
	if silent {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		// SQLite serializes writers; one connection also keeps :memory: databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// ConnectDatabase establishes the process database connection
func ConnectDatabase(cfg *Config) error {
	db, err := OpenDatabase(cfg.DatabaseURL, cfg.IsTest())
	if err != nil {
		return err
	}
	DB = db

	logger.Get().Info().Msg("Database connection established successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance
func SetDB(db *gorm.DB) {
	DB = db
}
