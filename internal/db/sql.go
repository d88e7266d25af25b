package db

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blogdesk/internal/errors"
	"blogdesk/internal/model"
)

// NewSQL returns a connected GORM DB instance for driver: mysql, postgres or sqlite.
func NewSQL(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		// sqlite serializes writers; a single connection also keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// gormLogger reports slow queries and errors. Lookups that miss are an
// expected outcome here and are not logged.
func gormLogger(w io.Writer) logger.Interface {
	return logger.New(stdlog.New(w, "\r\n", stdlog.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate creates or updates the tables for users, blogs and images.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Blog{}, &model.Image{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// PingSQL reports whether the SQL store answers.
func PingSQL(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping %s: %v", errors.ErrStoreUnavailable, db.Name(), err)
	}
	return nil
}
