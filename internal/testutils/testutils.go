package testutils

import (
	"context"
	"testing"
	"time"

	"racing-career/server/internal/services/auth"
	"racing-career/server/internal/services/career"
	"racing-career/server/internal/storage"
	"racing-career/server/pkg/config"

	"go.uber.org/zap/zaptest"
)

func GetTestConfig() config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Path: ":memory:",
		},
		Server: config.ServerConfig{
			Host:             "localhost",
			Port:             8080,
			CORSAllowOrigins: "*",
		},
		Storage: config.StorageConfig{
			Driver:  "memory",
			Timeout: time.Second,
		},
		Career: config.CareerConfig{
			SaveKey:            "racing_game_career_save",
			MaxRetries:         3,
			AllowNegativeAward: true,
		},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			SessionExpiration: time.Hour,
		},
		Log: config.LogConfig{
			Level:    "debug",
			Encoding: "console",
		},
	}
}

// SetupTestSlot returns an empty in-memory save slot.
func SetupTestSlot(t *testing.T) *storage.MemorySlot {
	t.Helper()
	slot := storage.NewMemorySlot()
	t.Cleanup(func() { _ = slot.Close() })
	return slot
}

func CreateTestPlayer(t *testing.T, slot storage.Slot, username string) *career.PlayerProgress {
	t.Helper()
	svc := career.NewCareerService(GetTestConfig(), zaptest.NewLogger(t), slot)
	player, err := svc.CreatePlayer(context.Background(), username)
	if err != nil {
		t.Fatalf("Failed to create player: %v", err)
	}
	return player
}

func CreateTestToken(t *testing.T, slot storage.Slot, username string) string {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := GetTestConfig()
	svc := auth.NewAuthService(cfg, logger, career.NewCareerService(cfg, logger, slot))
	token, err := svc.GenerateToken(username)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}
