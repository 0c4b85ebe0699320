package store

import (
	"context"
	"errors"
	"time"

	"github.com/wakewatch/wakewatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the single mutable shared resource: subscribers, watchlists,
// item snapshots and the notification audit trail.
type Store struct {
	log *zap.Logger
	db  *gorm.DB
}

func NewStore(lc fx.Lifecycle, log *zap.Logger, db *gorm.DB) *Store {
	return &Store{log, db}
}

func (s *Store) RegisterSubscriber(ctx context.Context, platform, identifier, username, firstName, lastName string) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	tx := s.db.WithContext(ctx).
		Where("platform = ? AND platform_identifier = ?", platform, identifier).
		First(sub)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		sub = &models.Subscriber{
			Platform:           platform,
			PlatformIdentifier: identifier,
			Username:           username,
			FirstName:          firstName,
			LastName:           lastName,
			Active:             true,
		}
		tx = s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(sub)
		if err := tx.Error; err != nil {
			return nil, err
		}
		s.log.Sugar().Infof("Registered subscriber %v (%s:%s)", sub.ID, platform, identifier)
		return sub, nil
	} else if err != nil {
		return nil, err
	}

	tx = s.db.WithContext(ctx).Model(sub).Updates(map[string]any{
		"username":   username,
		"first_name": firstName,
		"last_name":  lastName,
		"active":     true,
	})
	return sub, tx.Error
}

func (s *Store) GetSubscriber(ctx context.Context, subscriberID uint) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	tx := s.db.WithContext(ctx).First(sub, subscriberID)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// AddKeyword registers a watchlist keyword, normalized at registration
// time. Returns false if the keyword is already on the watchlist.
func (s *Store) AddKeyword(ctx context.Context, subscriberID uint, keyword string) (bool, error) {
	keyword = models.NormalizeKeyword(keyword)
	if keyword == "" {
		return false, errors.New("keyword must not be empty")
	}

	var existing models.WatchlistEntry
	tx := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND keyword = ? AND active = ?", subscriberID, keyword, true).
		First(&existing)
	if tx.Error == nil {
		return false, nil
	} else if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return false, tx.Error
	}

	entry := &models.WatchlistEntry{SubscriberID: subscriberID, Keyword: keyword, Active: true}
	tx = s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(entry)
	if err := tx.Error; err != nil {
		return false, err
	}
	s.log.Sugar().Infof("Added keyword '%s' to watchlist for subscriber %v", keyword, subscriberID)
	return true, nil
}

// RemoveKeyword deactivates a watchlist keyword. Returns false if the
// keyword was not on the watchlist.
func (s *Store) RemoveKeyword(ctx context.Context, subscriberID uint, keyword string) (bool, error) {
	keyword = models.NormalizeKeyword(keyword)

	tx := s.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Where("subscriber_id = ? AND keyword = ? AND active = ?", subscriberID, keyword, true).
		Update("active", false)
	if err := tx.Error; err != nil {
		return false, err
	}
	return tx.RowsAffected > 0, nil
}

// ClearWatchlist deactivates every keyword for a subscriber and returns
// the number of entries cleared.
func (s *Store) ClearWatchlist(ctx context.Context, subscriberID uint) (int64, error) {
	tx := s.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Where("subscriber_id = ? AND active = ?", subscriberID, true).
		Update("active", false)
	return tx.RowsAffected, tx.Error
}

func (s *Store) Watchlist(ctx context.Context, subscriberID uint) ([]string, error) {
	var keywords []string
	tx := s.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Where("subscriber_id = ? AND active = ?", subscriberID, true).
		Order("created_at").
		Pluck("keyword", &keywords)
	return keywords, tx.Error
}

// ActiveWatchlist returns the full active set of (subscriber, keyword)
// pairs, read once per poll cycle.
func (s *Store) ActiveWatchlist(ctx context.Context) ([]models.WatchPair, error) {
	var pairs []models.WatchPair
	tx := s.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Distinct("subscriber_id", "keyword").
		Where("active = ?", true).
		Find(&pairs)
	return pairs, tx.Error
}

// GetSnapshot returns the previous snapshot for a product identity, or
// nil if this product has not been observed before.
func (s *Store) GetSnapshot(ctx context.Context, subscriberID uint, keyword, productName, productCode string) (*models.ItemSnapshot, error) {
	snap := &models.ItemSnapshot{}
	tx := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND keyword = ? AND product_name = ? AND product_code = ?",
			subscriberID, keyword, productName, productCode).
		First(snap)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return snap, nil
}

// PutSnapshot upserts the snapshot for its identity key. At most one row
// exists per (subscriber, keyword, product name, product code).
func (s *Store) PutSnapshot(ctx context.Context, snap *models.ItemSnapshot) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subscriber_id"}, {Name: "keyword"},
			{Name: "product_name"}, {Name: "product_code"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"price", "availability", "total_stock", "store_locations", "captured_at",
		}),
	}).Create(snap)
	return tx.Error
}

func (s *Store) AddNotification(ctx context.Context, subscriberID uint, keyword, productName, productCode string) error {
	rec := &models.NotificationRecord{
		SubscriberID: subscriberID,
		Keyword:      keyword,
		ProductName:  productName,
		ProductCode:  productCode,
		SentAt:       time.Now().UTC(),
	}
	tx := s.db.WithContext(ctx).Create(rec)
	return tx.Error
}

// WatchlistStats reports totals for the status endpoint.
func (s *Store) WatchlistStats(ctx context.Context) (entries int64, keywords []string, subscribers int64, err error) {
	tx := s.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Where("active = ?", true).
		Count(&entries)
	if err = tx.Error; err != nil {
		return
	}

	tx = s.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Distinct().
		Where("active = ?", true).
		Order("keyword").
		Pluck("keyword", &keywords)
	if err = tx.Error; err != nil {
		return
	}

	tx = s.db.WithContext(ctx).
		Model(&models.Subscriber{}).
		Where("active = ?", true).
		Count(&subscribers)
	err = tx.Error
	return
}
