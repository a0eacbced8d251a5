package leaderboard

import (
	"context"
)

// Entry is one ranked career. Tied scores share a ranking.
type Entry struct {
	Username        string `json:"username"`
	TotalCoins      int64  `json:"total_coins"`
	LevelsCompleted int    `json:"levels_completed"`
	CurrentLevel    int    `json:"current_level"`
	Ranking         int    `json:"ranking"`
}

type Service interface {
	// GetCoinsLeaderboard ranks every career by total coins collected.
	GetCoinsLeaderboard(ctx context.Context, limit int) []*Entry
	// GetProgressLeaderboard ranks by levels completed, then total coins.
	GetProgressLeaderboard(ctx context.Context, limit int) []*Entry
	// GetDailyLeaderboard ranks by total coins among careers saved in the
	// last 24 hours.
	GetDailyLeaderboard(ctx context.Context, limit int) []*Entry
}
