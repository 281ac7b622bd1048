package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps the GORM database connection
type DB struct {
	*gorm.DB
}

// PoolOptions sizes the connection pool and the slow query threshold
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// DefaultPoolOptions suits one api or worker process
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		SlowThreshold:   200 * time.Millisecond,
	}
}

// slogWriter sends gorm's log lines to a structured logger
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

// NewDB connects to postgres, checks the connection and migrates the transactions table
func NewDB(ctx context.Context, dsn string, logger *slog.Logger, opts PoolOptions) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(slogWriter{logger: logger.With(slog.String("component", "gorm"))}, gormlogger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	conn := &DB{DB: gormDB}
	if err := sqlDB.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := conn.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate creates or alters the transactions table
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.WithContext(ctx).AutoMigrate(&Transaction{}); err != nil {
		return fmt.Errorf("failed to migrate transactions table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
