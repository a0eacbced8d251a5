package career_test

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"racing-career/server/internal/services/career"
	"racing-career/server/internal/storage"
	"racing-career/server/pkg/config"

	"go.uber.org/zap/zaptest"
)

const saveKey = "racing_game_career_save"

func testConfig() config.Config {
	return config.Config{
		Career: config.CareerConfig{
			SaveKey:            saveKey,
			MaxRetries:         3,
			AllowNegativeAward: true,
		},
	}
}

func newService(t *testing.T) (career.Service, *storage.MemorySlot) {
	t.Helper()
	slot := storage.NewMemorySlot()
	return career.NewCareerService(testConfig(), zaptest.NewLogger(t), slot), slot
}

func mustFind(t *testing.T, svc career.Service, username string) *career.PlayerProgress {
	t.Helper()
	player, ok := svc.FindPlayer(context.Background(), username)
	if !ok {
		t.Fatalf("Player %q not found", username)
	}
	return player
}

func TestCareerService_CreatePlayer(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	player, err := svc.CreatePlayer(ctx, "bob")
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if player.CurrentLevel != 0 {
		t.Errorf("Expected currentLevel 0, got %d", player.CurrentLevel)
	}
	if len(player.CompletedLevels) != 0 {
		t.Errorf("Expected no completed levels, got %v", player.CompletedLevels)
	}
	if player.TotalCoins != 0 || player.CurrencyBalance != 0 {
		t.Errorf("Expected zero coins and balance, got %d/%v", player.TotalCoins, player.CurrencyBalance)
	}
	if !reflect.DeepEqual(player.OwnedItems, []int{1, 5}) {
		t.Errorf("Expected owned items [1 5], got %v", player.OwnedItems)
	}
	if player.Timestamp == 0 {
		t.Error("Expected timestamp to be set")
	}

	stored := mustFind(t, svc, "bob")
	if !reflect.DeepEqual(stored, player) {
		t.Errorf("Stored record %+v differs from returned %+v", stored, player)
	}
}

func TestCareerService_CreatePlayerIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.CreatePlayer(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if err := svc.AwardCurrency(ctx, "alice", 10); err != nil {
		t.Fatalf("AwardCurrency failed: %v", err)
	}
	second, err := svc.CreatePlayer(ctx, "ALICE")
	if err != nil {
		t.Fatalf("Second CreatePlayer failed: %v", err)
	}
	if second.Username != first.Username {
		t.Errorf("Expected existing record %q, got %q", first.Username, second.Username)
	}
	if second.CurrencyBalance != 10 {
		t.Errorf("Existing record was reset, balance %v", second.CurrencyBalance)
	}
	if n := len(svc.LoadAll(ctx).Players); n != 1 {
		t.Errorf("Expected 1 record, got %d", n)
	}

	if _, err := svc.CreatePlayer(ctx, "   "); !errors.Is(err, career.ErrInvalidUsername) {
		t.Errorf("Expected ErrInvalidUsername, got %v", err)
	}
}

func TestCareerService_FindPlayerIsCaseInsensitive(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, "Alice"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	for _, name := range []string{"Alice", "alice", "ALICE"} {
		player, ok := svc.FindPlayer(ctx, name)
		if !ok {
			t.Errorf("FindPlayer(%q) found nothing", name)
			continue
		}
		if player.Username != "Alice" {
			t.Errorf("FindPlayer(%q) returned %q", name, player.Username)
		}
	}
	if _, ok := svc.FindPlayer(ctx, "bob"); ok {
		t.Error("FindPlayer(bob) should find nothing")
	}
}

func TestCareerService_CompleteLevel(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}

	if err := svc.CompleteLevel(ctx, "bob", 0, 50); err != nil {
		t.Fatalf("CompleteLevel failed: %v", err)
	}
	player := mustFind(t, svc, "bob")
	if player.CurrentLevel != 1 {
		t.Errorf("Expected currentLevel 1, got %d", player.CurrentLevel)
	}
	if !reflect.DeepEqual(player.CompletedLevels, []int{0}) {
		t.Errorf("Expected completed [0], got %v", player.CompletedLevels)
	}
	if player.TotalCoins != 50 {
		t.Errorf("Expected 50 coins, got %d", player.TotalCoins)
	}

	// Replays keep membership unique but still add coins
	for i := 0; i < 2; i++ {
		if err := svc.CompleteLevel(ctx, "bob", 3, 10); err != nil {
			t.Fatalf("CompleteLevel(3) failed: %v", err)
		}
	}
	player = mustFind(t, svc, "bob")
	if !reflect.DeepEqual(player.CompletedLevels, []int{0, 3}) {
		t.Errorf("Expected completed [0 3], got %v", player.CompletedLevels)
	}
	if player.TotalCoins != 70 {
		t.Errorf("Expected 70 coins, got %d", player.TotalCoins)
	}
	if player.CurrentLevel != 4 {
		t.Errorf("Expected currentLevel 4, got %d", player.CurrentLevel)
	}

	if err := svc.CompleteLevel(ctx, "bob", 5, 0); err != nil {
		t.Fatalf("CompleteLevel(5) failed: %v", err)
	}
	player = mustFind(t, svc, "bob")
	if player.CurrentLevel != 4 {
		t.Errorf("Final level must not advance currentLevel, got %d", player.CurrentLevel)
	}
	if !player.HasCompleted(5) {
		t.Errorf("Expected level 5 completed, got %v", player.CompletedLevels)
	}
}

func TestCareerService_CompleteLevelAtFinalLevel(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if err := svc.CompleteLevel(ctx, "bob", 4, 0); err != nil {
		t.Fatalf("CompleteLevel(4) failed: %v", err)
	}
	if err := svc.CompleteLevel(ctx, "bob", 5, 0); err != nil {
		t.Fatalf("CompleteLevel(5) failed: %v", err)
	}
	player := mustFind(t, svc, "bob")
	if player.CurrentLevel != 5 {
		t.Errorf("Expected currentLevel to stay 5, got %d", player.CurrentLevel)
	}
	if !reflect.DeepEqual(player.CompletedLevels, []int{4, 5}) {
		t.Errorf("Expected completed [4 5], got %v", player.CompletedLevels)
	}
}

func TestCareerService_CompleteLevelKeepsLevelsSorted(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 40; i++ {
		level := rng.Intn(career.FinalLevel + 1)
		if err := svc.CompleteLevel(ctx, "bob", level, 1); err != nil {
			t.Fatalf("CompleteLevel(%d) failed: %v", level, err)
		}
		player := mustFind(t, svc, "bob")
		if !slices.IsSorted(player.CompletedLevels) {
			t.Fatalf("Completed levels not sorted: %v", player.CompletedLevels)
		}
		if len(slices.Compact(slices.Clone(player.CompletedLevels))) != len(player.CompletedLevels) {
			t.Fatalf("Completed levels contain duplicates: %v", player.CompletedLevels)
		}
	}
	if player := mustFind(t, svc, "bob"); player.TotalCoins != 40 {
		t.Errorf("Expected 40 coins, got %d", player.TotalCoins)
	}
}

func TestCareerService_CompleteLevelRejectsInvalidInput(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	for _, level := range []int{-1, 6} {
		if err := svc.CompleteLevel(ctx, "bob", level, 0); !errors.Is(err, career.ErrInvalidLevel) {
			t.Errorf("CompleteLevel(%d): expected ErrInvalidLevel, got %v", level, err)
		}
	}
	if err := svc.CompleteLevel(ctx, "bob", 1, -5); !errors.Is(err, career.ErrNegativeAmount) {
		t.Errorf("Expected ErrNegativeAmount, got %v", err)
	}
	// Unknown player is logged and ignored
	if err := svc.CompleteLevel(ctx, "nobody", 1, 5); err != nil {
		t.Errorf("Expected nil for unknown player, got %v", err)
	}
}

func TestCareerService_AwardAndPurchase(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}

	if err := svc.AwardCurrency(ctx, "bob", 100); err != nil {
		t.Fatalf("AwardCurrency failed: %v", err)
	}
	ok, err := svc.PurchaseItem(ctx, "bob", 3, 60)
	if err != nil {
		t.Fatalf("PurchaseItem failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected purchase to succeed")
	}
	player := mustFind(t, svc, "bob")
	if player.CurrencyBalance != 40 {
		t.Errorf("Expected balance 40, got %v", player.CurrencyBalance)
	}
	if !reflect.DeepEqual(player.OwnedItems, []int{1, 5, 3}) {
		t.Errorf("Expected owned [1 5 3], got %v", player.OwnedItems)
	}

	tests := []struct {
		name   string
		itemID int
		cost   float64
	}{
		{"insufficient balance", 4, 1000},
		{"already owned", 3, 10},
		{"starter item", 1, 0},
		{"negative cost", 6, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := mustFind(t, svc, "bob")
			ok, err := svc.PurchaseItem(ctx, "bob", tt.itemID, tt.cost)
			if err != nil {
				t.Fatalf("PurchaseItem failed: %v", err)
			}
			if ok {
				t.Fatal("Expected purchase to fail")
			}
			after := mustFind(t, svc, "bob")
			if !reflect.DeepEqual(before, after) {
				t.Errorf("Record changed on failed purchase: %+v -> %+v", before, after)
			}
		})
	}

	ok, err = svc.PurchaseItem(ctx, "nobody", 3, 1)
	if err != nil || ok {
		t.Errorf("Purchase for unknown player: got %v, %v", ok, err)
	}
}

func TestCareerService_AwardCurrencyNegativePolicy(t *testing.T) {
	ctx := context.Background()

	svc, _ := newService(t)
	if _, err := svc.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if err := svc.AwardCurrency(ctx, "bob", -25); err != nil {
		t.Fatalf("AwardCurrency failed: %v", err)
	}
	if player := mustFind(t, svc, "bob"); player.CurrencyBalance != -25 {
		t.Errorf("Expected balance -25, got %v", player.CurrencyBalance)
	}

	cfg := testConfig()
	cfg.Career.AllowNegativeAward = false
	strict := career.NewCareerService(cfg, zaptest.NewLogger(t), storage.NewMemorySlot())
	if _, err := strict.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if err := strict.AwardCurrency(ctx, "bob", -25); !errors.Is(err, career.ErrNegativeAmount) {
		t.Errorf("Expected ErrNegativeAmount, got %v", err)
	}
	if player := mustFind(t, strict, "bob"); player.CurrencyBalance != 0 {
		t.Errorf("Expected balance 0, got %v", player.CurrencyBalance)
	}

	// Unknown player is a silent no-op
	if err := svc.AwardCurrency(ctx, "nobody", 5); err != nil {
		t.Errorf("Expected nil for unknown player, got %v", err)
	}
}

func TestCareerService_UpdateProgress(t *testing.T) {
	svc, slot := newService(t)
	ctx := context.Background()
	if _, err := svc.CreatePlayer(ctx, "bob"); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}

	// Stored verbatim, no sorting
	if err := svc.UpdateProgress(ctx, "BOB", 3, []int{2, 0, 1}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	player := mustFind(t, svc, "bob")
	if player.CurrentLevel != 3 {
		t.Errorf("Expected currentLevel 3, got %d", player.CurrentLevel)
	}
	if !reflect.DeepEqual(player.CompletedLevels, []int{2, 0, 1}) {
		t.Errorf("Expected completed [2 0 1], got %v", player.CompletedLevels)
	}

	before, _ := slot.Get(ctx, saveKey)
	if err := svc.UpdateProgress(ctx, "nobody", 1, []int{0}); err != nil {
		t.Fatalf("UpdateProgress for unknown player failed: %v", err)
	}
	after, _ := slot.Get(ctx, saveKey)
	if before != after {
		t.Error("UpdateProgress for unknown player must not write")
	}
}

func TestCareerService_RevisionAndTimestamp(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created, err := svc.CreatePlayer(ctx, "bob")
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if err := svc.AwardCurrency(ctx, "bob", 1); err != nil {
		t.Fatalf("AwardCurrency failed: %v", err)
	}
	player := mustFind(t, svc, "bob")
	if player.Revision != created.Revision+1 {
		t.Errorf("Expected revision %d, got %d", created.Revision+1, player.Revision)
	}
	if player.Timestamp < created.Timestamp {
		t.Errorf("Timestamp went backwards: %d -> %d", created.Timestamp, player.Timestamp)
	}
}
