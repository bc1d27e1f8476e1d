package db

import (
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to MySQL. logLevel is one of silent, error, warn, info.
func OpenGorm(dsn, logLevel string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), WithLogLevel(logLevel))
}

type Option func(*gorm.Config)

func WithLogLevel(level string) Option {
	return func(c *gorm.Config) { c.Logger = logger.Default.LogMode(ParseLogLevel(level)) }
}

func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// OpenGormWithDialector opens, tunes the pool and pings. Unique-key
// violations surface as gorm.ErrDuplicatedKey.
func OpenGormWithDialector(dial gorm.Dialector, opts ...Option) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	slog.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}
