package career

import (
	"context"
	"errors"
)

var (
	ErrInvalidUsername = errors.New("username must not be empty")
	ErrInvalidLevel    = errors.New("level number out of range")
	ErrNegativeAmount  = errors.New("amount must not be negative")
)

// Service is the career save store. Every operation reads the whole save
// collection, applies at most one mutation, and writes the whole collection
// back. Usernames match case-insensitively; the first match wins.
type Service interface {
	// LoadAll returns the migrated save collection. Missing or unreadable
	// data yields an empty collection; the failure is logged, not returned.
	LoadAll(ctx context.Context) *SaveCollection
	// SaveAll overwrites the persisted collection unconditionally.
	SaveAll(ctx context.Context, saves *SaveCollection) error
	FindPlayer(ctx context.Context, username string) (*PlayerProgress, bool)
	// CreatePlayer returns the existing record if username is already known.
	CreatePlayer(ctx context.Context, username string) (*PlayerProgress, error)
	UpdateProgress(ctx context.Context, username string, currentLevel int, completedLevels []int) error
	AwardCurrency(ctx context.Context, username string, amount float64) error
	// PurchaseItem reports whether the purchase happened. The error is only
	// set when persisting a successful purchase failed.
	PurchaseItem(ctx context.Context, username string, itemID int, cost float64) (bool, error)
	CompleteLevel(ctx context.Context, username string, levelNumber int, coinsCollected int64) error
}
