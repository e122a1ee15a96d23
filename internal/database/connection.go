// internal/database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"print-service/internal/config"
)

// DB wraps sql.DB with the pool settings applied
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewConnection opens a PostgreSQL connection pool and verifies it
func NewConnection(cfg *config.Config, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	return &DB{DB: db, logger: logger}, nil
}

// HealthCheck verifies the database is still reachable
func (db *DB) HealthCheck() error {
	start := time.Now()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	db.logger.Debug("Database health check passed", zap.Duration("latency", time.Since(start)))
	return nil
}

// GetStats returns connection pool statistics
func (db *DB) GetStats() sql.DBStats {
	return db.Stats()
}

// Close closes the connection pool
func (db *DB) Close() error {
	db.logger.Info("Closing database connection")
	return db.DB.Close()
}
