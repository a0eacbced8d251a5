package storage

import (
	"context"
	"fmt"
	"strings"

	"racing-career/server/internal/db"
	"racing-career/server/pkg/config"

	"go.uber.org/zap"
)

// Open builds the slot backend named by cfg.Storage.Driver. For sqlite the
// database is opened from cfg.Database and migrated before use; the returned
// slot owns the connection.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Slot, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	logger.Info("Opening save slot storage", zap.String("driver", driver))

	switch driver {
	case "memory":
		return NewMemorySlot(), nil
	case "bbolt":
		slot, err := OpenBoltSlot(cfg.Storage.BboltPath, cfg.Storage.Timeout)
		if err != nil {
			return nil, err
		}
		return slot, nil
	case "sqlite":
		conn, err := db.OpenDB(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.RunMigrations(conn, logger); err != nil {
			conn.Close()
			return nil, err
		}
		return &SQLiteSlot{db: conn, ownsDB: true}, nil
	case "redis":
		slot, err := OpenRedisSlot(ctx, RedisOptions{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Timeout:  cfg.Storage.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return slot, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
}
