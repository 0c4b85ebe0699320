package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/wakewatch/wakewatch/lib/diff"
	"github.com/wakewatch/wakewatch/lib/inventory"
	"github.com/wakewatch/wakewatch/lib/location"
	"github.com/wakewatch/wakewatch/lib/models"
	"go.uber.org/zap"
)

// runCycle checks every watched keyword exactly once. Each keyword is
// fetched a single time regardless of how many subscribers watch it,
// and failures on one keyword never block the rest.
func (m *Monitor) runCycle(ctx context.Context, cycleStartTime time.Time) {
	log := m.log.Sugar().With("cycle_id", uuid.NewString())

	pairs, err := m.store.ActiveWatchlist(ctx)
	if err != nil {
		log.Errorw("Failed to load active watchlist", "err", err)
		return
	}
	if len(pairs) == 0 {
		log.Info("No active watchlist entries, skipping cycle")
		return
	}

	byKeyword := make(map[string][]uint)
	for _, pair := range pairs {
		byKeyword[pair.Keyword] = append(byKeyword[pair.Keyword], pair.SubscriberID)
	}
	keywords := make([]string, 0, len(byKeyword))
	for keyword := range byKeyword {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)

	metrics := &cycleMetrics{keywords: len(keywords)}
	for i, keyword := range keywords {
		if ctx.Err() != nil {
			log.Info("Cycle interrupted")
			return
		}

		m.checkKeyword(ctx, log, keyword, byKeyword[keyword], metrics)

		if i < len(keywords)-1 {
			if err := sleepCtx(ctx, m.politenessDelay); err != nil {
				log.Info("Cycle interrupted")
				return
			}
		}
	}

	metrics.report(log, cycleStartTime)
}

func (m *Monitor) checkKeyword(ctx context.Context, log *zap.SugaredLogger, keyword string, subscriberIDs []uint, metrics *cycleMetrics) {
	records, err := m.search.Search(ctx, keyword, m.maxResults)
	switch {
	case errors.Is(err, inventory.ErrPageShape):
		log.Warnw("Search page anomaly, skipping keyword", "keyword", keyword, "err", err)
		metrics.anomalies++
		return
	case err != nil:
		log.Errorw("Search failed, skipping keyword", "keyword", keyword, "err", err)
		metrics.fetchErrors++
		return
	}

	for _, subscriberID := range subscriberIDs {
		if err := m.notifySubscriber(ctx, keyword, subscriberID, records); err != nil {
			log.Errorw("Failed to process keyword for subscriber",
				"keyword", keyword, "subscriber", subscriberID, "err", err)
			metrics.errored++
		} else {
			metrics.notified++
		}
	}
}

// notifySubscriber diffs each record against its stored snapshot, then
// writes the new snapshot regardless of the decision so that each state
// transition notifies at most once.
func (m *Monitor) notifySubscriber(ctx context.Context, keyword string, subscriberID uint, records models.InventoryRecords) error {
	var changed []models.ItemChange
	for _, record := range records {
		previous, err := m.store.GetSnapshot(ctx, subscriberID, keyword, record.Name, record.Code)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}

		decision := diff.Decide(previous, record)
		if decision.Notify {
			changed = append(changed, models.ItemChange{Record: record, Reasons: decision.Reasons})
		}

		if err := m.store.PutSnapshot(ctx, snapshotOf(subscriberID, keyword, record)); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}

	if len(changed) == 0 {
		return nil
	}
	return m.dispatch.Dispatch(ctx, subscriberID, keyword, changed)
}

func snapshotOf(subscriberID uint, keyword string, record models.InventoryRecord) *models.ItemSnapshot {
	return &models.ItemSnapshot{
		SubscriberID:   subscriberID,
		Keyword:        keyword,
		ProductName:    record.Name,
		ProductCode:    record.Code,
		Price:          record.Price,
		Availability:   record.Availability,
		TotalStock:     location.TotalStock(record.Locations),
		StoreLocations: record.Locations,
		CapturedAt:     time.Now().UTC(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
