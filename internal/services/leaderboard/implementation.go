package leaderboard

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"racing-career/server/internal/services/career"
	"racing-career/server/pkg/config"

	"go.uber.org/zap"
)

const dailyWindow = 24 * time.Hour

type leaderboardService struct {
	config    config.Config
	logger    *zap.Logger
	careerSvc career.Service
	now       func() time.Time
}

func NewLeaderboardService(cfg config.Config, logger *zap.Logger, careerSvc career.Service) Service {
	return &leaderboardService{
		config:    cfg,
		logger:    logger,
		careerSvc: careerSvc,
		now:       time.Now,
	}
}

func (s *leaderboardService) GetCoinsLeaderboard(ctx context.Context, limit int) []*Entry {
	players := s.careerSvc.LoadAll(ctx).Players
	return rank(players, s.limit(limit), byCoins)
}

func (s *leaderboardService) GetProgressLeaderboard(ctx context.Context, limit int) []*Entry {
	players := s.careerSvc.LoadAll(ctx).Players
	return rank(players, s.limit(limit), byProgress)
}

func (s *leaderboardService) GetDailyLeaderboard(ctx context.Context, limit int) []*Entry {
	cutoff := s.now().Add(-dailyWindow).UnixMilli()
	players := slices.DeleteFunc(s.careerSvc.LoadAll(ctx).Players, func(p *career.PlayerProgress) bool {
		return p.Timestamp < cutoff
	})
	s.logger.Debug("Built daily leaderboard", zap.Int("active_players", len(players)))
	return rank(players, s.limit(limit), byCoins)
}

// limit falls back to the configured size for non-positive requests.
func (s *leaderboardService) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.config.Career.LeaderboardSize > 0 {
		return s.config.Career.LeaderboardSize
	}
	return 10
}

// score orders two careers, best first; 0 means tied.
type score func(a, b *career.PlayerProgress) int

func byCoins(a, b *career.PlayerProgress) int {
	return cmp.Compare(b.TotalCoins, a.TotalCoins)
}

func byProgress(a, b *career.PlayerProgress) int {
	if c := cmp.Compare(len(b.CompletedLevels), len(a.CompletedLevels)); c != 0 {
		return c
	}
	return byCoins(a, b)
}

func rank(players []*career.PlayerProgress, limit int, by score) []*Entry {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b *career.PlayerProgress) int {
		if c := by(a, b); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username))
	})

	entries := make([]*Entry, 0, min(limit, len(sorted)))
	for i, p := range sorted {
		if i == limit {
			break
		}
		ranking := i + 1
		if i > 0 && by(sorted[i-1], p) == 0 {
			ranking = entries[i-1].Ranking
		}
		entries = append(entries, &Entry{
			Username:        p.Username,
			TotalCoins:      p.TotalCoins,
			LevelsCompleted: len(p.CompletedLevels),
			CurrentLevel:    p.CurrentLevel,
			Ranking:         ranking,
		})
	}
	return entries
}
