package career

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"racing-career/server/internal/storage"
	"racing-career/server/pkg/config"

	"go.uber.org/zap"
)

type careerService struct {
	logger             *zap.Logger
	slot               storage.Slot
	key                string
	maxRetries         int
	allowNegativeAward bool
	now                func() time.Time

	// serializes read-modify-write cycles within this process; CAS covers
	// writers in other processes
	mu sync.Mutex
}

func NewCareerService(cfg config.Config, logger *zap.Logger, slot storage.Slot) Service {
	key := cfg.Career.SaveKey
	if key == "" {
		key = "racing_game_career_save"
	}
	retries := cfg.Career.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &careerService{
		logger:             logger,
		slot:               slot,
		key:                key,
		maxRetries:         retries,
		allowNegativeAward: cfg.Career.AllowNegativeAward,
		now:                time.Now,
	}
}

func (s *careerService) LoadAll(ctx context.Context) *SaveCollection {
	saves, _, err := s.read(ctx)
	if err != nil {
		s.logger.Error("Failed to load career saves", zap.String("key", s.key), zap.Error(err))
		return &SaveCollection{Players: []*PlayerProgress{}}
	}
	return saves
}

func (s *careerService) SaveAll(ctx context.Context, saves *SaveCollection) error {
	payload, err := encodeCollection(saves)
	if err != nil {
		s.logger.Error("Failed to encode career saves", zap.Error(err))
		return err
	}
	if err := s.slot.Set(ctx, s.key, payload); err != nil {
		s.logger.Error("Failed to save career data", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to save career data: %w", err)
	}
	return nil
}

func (s *careerService) FindPlayer(ctx context.Context, username string) (*PlayerProgress, bool) {
	player := s.LoadAll(ctx).Find(username)
	return player, player != nil
}

func (s *careerService) CreatePlayer(ctx context.Context, username string) (*PlayerProgress, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrInvalidUsername
	}

	var player *PlayerProgress
	err := s.mutate(ctx, func(saves *SaveCollection) (bool, error) {
		if existing := saves.Find(username); existing != nil {
			player = existing
			return false, nil
		}
		player = &PlayerProgress{
			Username:        username,
			CurrentLevel:    IntroLevel,
			CompletedLevels: []int{},
			TotalCoins:      0,
			CurrencyBalance: 0,
			OwnedItems:      StarterItems(),
		}
		s.touch(player)
		saves.Players = append(saves.Players, player)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (s *careerService) UpdateProgress(ctx context.Context, username string, currentLevel int, completedLevels []int) error {
	return s.mutate(ctx, func(saves *SaveCollection) (bool, error) {
		player := saves.Find(username)
		if player == nil {
			return false, nil
		}
		player.CurrentLevel = currentLevel
		player.CompletedLevels = slices.Clone(completedLevels)
		if player.CompletedLevels == nil {
			player.CompletedLevels = []int{}
		}
		s.touch(player)
		return true, nil
	})
}

func (s *careerService) AwardCurrency(ctx context.Context, username string, amount float64) error {
	if amount < 0 && !s.allowNegativeAward {
		return ErrNegativeAmount
	}
	return s.mutate(ctx, func(saves *SaveCollection) (bool, error) {
		player := saves.Find(username)
		if player == nil {
			return false, nil
		}
		player.CurrencyBalance += amount
		s.touch(player)
		s.logger.Debug("Awarded currency",
			zap.String("username", player.Username),
			zap.Float64("amount", amount),
			zap.Float64("balance", player.CurrencyBalance))
		return true, nil
	})
}

func (s *careerService) PurchaseItem(ctx context.Context, username string, itemID int, cost float64) (bool, error) {
	if cost < 0 {
		return false, nil
	}
	var purchased bool
	err := s.mutate(ctx, func(saves *SaveCollection) (bool, error) {
		purchased = false
		player := saves.Find(username)
		if player == nil {
			return false, nil
		}
		if player.CurrencyBalance < cost || player.Owns(itemID) {
			return false, nil
		}
		player.CurrencyBalance -= cost
		player.OwnedItems = append(player.OwnedItems, itemID)
		s.touch(player)
		purchased = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if purchased {
		s.logger.Info("Purchased item",
			zap.String("username", username),
			zap.Int("item_id", itemID),
			zap.Float64("cost", cost))
	}
	return purchased, nil
}

func (s *careerService) CompleteLevel(ctx context.Context, username string, levelNumber int, coinsCollected int64) error {
	if !ValidLevel(levelNumber) {
		return ErrInvalidLevel
	}
	if coinsCollected < 0 {
		return ErrNegativeAmount
	}
	return s.mutate(ctx, func(saves *SaveCollection) (bool, error) {
		player := saves.Find(username)
		if player == nil {
			s.logger.Error("Player not found in career saves",
				zap.String("username", username),
				zap.Int("level", levelNumber))
			return false, nil
		}
		if !player.HasCompleted(levelNumber) {
			player.CompletedLevels = append(player.CompletedLevels, levelNumber)
			slices.Sort(player.CompletedLevels)
		}
		player.TotalCoins += coinsCollected
		if levelNumber < FinalLevel {
			player.CurrentLevel = levelNumber + 1
		}
		s.touch(player)
		s.logger.Debug("Completed level",
			zap.String("username", player.Username),
			zap.Int("level", levelNumber),
			zap.Int64("coins_collected", coinsCollected),
			zap.Int64("total_coins", player.TotalCoins))
		return true, nil
	})
}

// Internal helpers

// read loads and migrates the collection along with the raw blob it came
// from. raw is nil when the slot is empty. An unparsable blob yields an
// empty collection but keeps raw set so the next write replaces it.
func (s *careerService) read(ctx context.Context) (*SaveCollection, *string, error) {
	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &SaveCollection{Players: []*PlayerProgress{}}, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read career saves: %w", err)
	}
	saves, err := decodeCollection(raw)
	if err != nil {
		s.logger.Error("Discarding unparsable career saves", zap.String("key", s.key), zap.Error(err))
		return &SaveCollection{Players: []*PlayerProgress{}}, &raw, nil
	}
	return saves, &raw, nil
}

// mutate applies fn to a freshly read collection and commits it with
// compare-and-swap, starting over from a new read when another writer got
// there first. fn reports whether it changed anything; unchanged
// collections are not written.
func (s *careerService) mutate(ctx context.Context, fn func(*SaveCollection) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		saves, raw, err := s.read(ctx)
		if err != nil {
			s.logger.Error("Failed to load career saves", zap.String("key", s.key), zap.Error(err))
			return err
		}
		changed, err := fn(saves)
		if err != nil || !changed {
			return err
		}
		payload, err := encodeCollection(saves)
		if err != nil {
			return err
		}
		err = s.slot.CompareAndSwap(ctx, s.key, raw, payload)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			s.logger.Error("Failed to save career data", zap.String("key", s.key), zap.Error(err))
			return fmt.Errorf("failed to save career data: %w", err)
		}
		s.logger.Warn("Career saves changed concurrently, retrying",
			zap.String("key", s.key),
			zap.Int("attempt", attempt+1))
	}
	return fmt.Errorf("failed to save career data after %d attempts: %w", s.maxRetries+1, storage.ErrConflict)
}

func (s *careerService) touch(p *PlayerProgress) {
	p.Timestamp = s.now().UnixMilli()
	p.Revision++
}
