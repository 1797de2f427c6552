package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chirper/domain"
)

// DB wraps the gorm postgres connection.
type DB struct {
	Gorm *gorm.DB

	DSN string
}

func NewDB(dsn string) *DB {
	return &DB{
		DSN: dsn,
	}
}

// Open connects to postgres and executes migrations. TranslateError is on so
// a unique constraint violation surfaces as gorm.ErrDuplicatedKey, which the
// like toggle relies on.
func (db *DB) Open() (err error) {
	if db.DSN == "" {
		return fmt.Errorf("dsn required")
	}
	db.Gorm, err = gorm.Open(postgres.Open(db.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("err opening gorm postgres connection: %w", err)
	}
	if err := AutoMigrate(db.Gorm); err != nil {
		return fmt.Errorf("err migrating: %w", err)
	}
	logrus.WithField("dsn", db.DSN).Info("database connection open")
	return nil
}

// Close closes the underlying sql connection.
func (db *DB) Close() error {
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the tables for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Tweet{},
		&domain.Reply{},
		&domain.Like{},
		&domain.Media{},
		&domain.Follow{},
	)
}
