package career

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// PlayerProgress is one player's career record.
type PlayerProgress struct {
	Username        string  `json:"username"`
	CurrentLevel    int     `json:"currentLevel"`
	CompletedLevels []int   `json:"completedLevels"`
	Timestamp       int64   `json:"timestamp"`
	TotalCoins      int64   `json:"totalCoins"`
	CurrencyBalance float64 `json:"currencyBalance"`
	OwnedItems      []int   `json:"ownedItems"`
	Revision        int64   `json:"revision"`
}

// SaveCollection is the unit persisted in the save slot.
type SaveCollection struct {
	Players []*PlayerProgress `json:"players"`
}

// StarterItems returns the vehicles every career starts with.
func StarterItems() []int {
	return []int{1, 5}
}

// Owns reports whether itemID is in the player's inventory.
func (p *PlayerProgress) Owns(itemID int) bool {
	return slices.Contains(p.OwnedItems, itemID)
}

// HasCompleted reports whether level is in the completed set.
func (p *PlayerProgress) HasCompleted(level int) bool {
	return slices.Contains(p.CompletedLevels, level)
}

// Find returns the first record whose username matches case-insensitively.
func (c *SaveCollection) Find(username string) *PlayerProgress {
	for _, p := range c.Players {
		if strings.EqualFold(p.Username, username) {
			return p
		}
	}
	return nil
}

// storedProgress mirrors the persisted shape. Pointer and slice fields stay
// nil when absent so the migration can tell "missing" from "zero".
type storedProgress struct {
	Username        string   `json:"username"`
	CurrentLevel    int      `json:"currentLevel"`
	CompletedLevels []int    `json:"completedLevels"`
	Timestamp       int64    `json:"timestamp"`
	TotalCoins      *int64   `json:"totalCoins"`
	CurrencyBalance *float64 `json:"currencyBalance"`
	OwnedItems      []int    `json:"ownedItems"`
	Revision        int64    `json:"revision"`

	// Written by older clients.
	BTCBalance *float64 `json:"btcBalance"`
	OwnedCars  []int    `json:"ownedCars"`
}

type storedCollection struct {
	Players []storedProgress `json:"players"`
}

// decodeCollection parses a persisted blob and backfills fields introduced
// after the record was written. Present values are never replaced.
func decodeCollection(raw string) (*SaveCollection, error) {
	var stored storedCollection
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("failed to parse career saves: %w", err)
	}

	saves := &SaveCollection{Players: make([]*PlayerProgress, 0, len(stored.Players))}
	for i := range stored.Players {
		saves.Players = append(saves.Players, migrate(&stored.Players[i]))
	}
	return saves, nil
}

func migrate(s *storedProgress) *PlayerProgress {
	p := &PlayerProgress{
		Username:        s.Username,
		CurrentLevel:    s.CurrentLevel,
		CompletedLevels: s.CompletedLevels,
		Timestamp:       s.Timestamp,
		OwnedItems:      s.OwnedItems,
		Revision:        s.Revision,
	}
	if p.CompletedLevels == nil {
		p.CompletedLevels = []int{}
	}
	if s.TotalCoins != nil {
		p.TotalCoins = *s.TotalCoins
	}
	switch {
	case s.CurrencyBalance != nil:
		p.CurrencyBalance = *s.CurrencyBalance
	case s.BTCBalance != nil:
		p.CurrencyBalance = *s.BTCBalance
	}
	if p.OwnedItems == nil {
		p.OwnedItems = s.OwnedCars
	}
	if p.OwnedItems == nil {
		p.OwnedItems = StarterItems()
	}
	return p
}

func encodeCollection(saves *SaveCollection) (string, error) {
	if saves.Players == nil {
		saves = &SaveCollection{Players: []*PlayerProgress{}}
	}
	payload, err := json.Marshal(saves)
	if err != nil {
		return "", fmt.Errorf("failed to encode career saves: %w", err)
	}
	return string(payload), nil
}
