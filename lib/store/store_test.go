package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wakewatch/wakewatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Subscriber{},
		&models.WatchlistEntry{},
		&models.ItemSnapshot{},
		&models.NotificationRecord{},
	))
	return NewStore(nil, zap.NewNop(), db)
}

func TestRegisterSubscriber_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.RegisterSubscriber(ctx, "telegram", "111", "alice", "Alice", "")
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)

	again, err := s.RegisterSubscriber(ctx, "telegram", "111", "alice_new", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)

	var count int64
	s.db.Model(&models.Subscriber{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddKeyword_NormalizesAndRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.AddKeyword(ctx, 1, "  Blanton's  ")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddKeyword(ctx, 1, "BLANTON'S")
	require.NoError(t, err)
	assert.False(t, added)

	keywords, err := s.Watchlist(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"blanton's"}, keywords)
}

func TestAddKeyword_RejectsEmpty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddKeyword(context.Background(), 1, "   ")
	assert.Error(t, err)
}

func TestRemoveKeyword_SoftDeactivates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddKeyword(ctx, 1, "eagle rare")
	require.NoError(t, err)

	removed, err := s.RemoveKeyword(ctx, 1, "Eagle Rare")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveKeyword(ctx, 1, "eagle rare")
	require.NoError(t, err)
	assert.False(t, removed)

	keywords, err := s.Watchlist(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, keywords)

	// The row survives as inactive history.
	var count int64
	s.db.Model(&models.WatchlistEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestClearWatchlist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddKeyword(ctx, 1, "blanton's")
	s.AddKeyword(ctx, 1, "eagle rare")
	s.AddKeyword(ctx, 2, "weller")

	cleared, err := s.ClearWatchlist(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	keywords, _ := s.Watchlist(ctx, 2)
	assert.Equal(t, []string{"weller"}, keywords)
}

func TestActiveWatchlist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddKeyword(ctx, 1, "blanton's")
	s.AddKeyword(ctx, 2, "blanton's")
	s.AddKeyword(ctx, 2, "weller")
	s.RemoveKeyword(ctx, 2, "weller")

	pairs, err := s.ActiveWatchlist(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.WatchPair{
		{SubscriberID: 1, Keyword: "blanton's"},
		{SubscriberID: 2, Keyword: "blanton's"},
	}, pairs)
}

func TestSnapshots_UpsertKeepsOneRowPerIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := &models.ItemSnapshot{
		SubscriberID:   1,
		Keyword:        "blanton's",
		ProductName:    "Blanton's Single Barrel",
		ProductCode:    "12345",
		Price:          "$74.99",
		Availability:   "In Stock",
		TotalStock:     5,
		StoreLocations: []string{"123 Main St - 5 in stock"},
	}
	require.NoError(t, s.PutSnapshot(ctx, snap))

	updated := *snap
	updated.ID = 0
	updated.Price = "$69.99"
	updated.TotalStock = 3
	require.NoError(t, s.PutSnapshot(ctx, &updated))

	var count int64
	s.db.Model(&models.ItemSnapshot{}).Count(&count)
	assert.Equal(t, int64(1), count)

	got, err := s.GetSnapshot(ctx, 1, "blanton's", "Blanton's Single Barrel", "12345")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "$69.99", got.Price)
	assert.Equal(t, 3, got.TotalStock)
	assert.Equal(t, []string{"123 Main St - 5 in stock"}, got.StoreLocations)
}

func TestSnapshots_CodeIsPartOfIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	withCode := &models.ItemSnapshot{
		SubscriberID: 1, Keyword: "blanton's",
		ProductName: "Blanton's Single Barrel", ProductCode: "12345",
	}
	withoutCode := &models.ItemSnapshot{
		SubscriberID: 1, Keyword: "blanton's",
		ProductName: "Blanton's Single Barrel", ProductCode: "",
	}
	require.NoError(t, s.PutSnapshot(ctx, withCode))
	require.NoError(t, s.PutSnapshot(ctx, withoutCode))

	var count int64
	s.db.Model(&models.ItemSnapshot{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestGetSnapshot_MissingIsNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSnapshot(context.Background(), 1, "blanton's", "Nope", "")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestWatchlistStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.RegisterSubscriber(ctx, "telegram", "111", "alice", "", "")
	s.RegisterSubscriber(ctx, "email", "bob@example.com", "bob", "", "")
	s.AddKeyword(ctx, 1, "blanton's")
	s.AddKeyword(ctx, 2, "blanton's")
	s.AddKeyword(ctx, 2, "weller")

	entries, keywords, subscribers, err := s.WatchlistStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), entries)
	assert.Equal(t, []string{"blanton's", "weller"}, keywords)
	assert.Equal(t, int64(2), subscribers)
}
