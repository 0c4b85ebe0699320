package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/wakewatch/wakewatch/config"
	"github.com/wakewatch/wakewatch/lib/inventory"
	"github.com/wakewatch/wakewatch/lib/models"
	"github.com/wakewatch/wakewatch/lib/notify"
	"github.com/wakewatch/wakewatch/lib/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (models.InventoryRecords, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, subscriberID uint, keyword string, items []models.ItemChange) error
}

type Storage interface {
	ActiveWatchlist(ctx context.Context) ([]models.WatchPair, error)
	GetSnapshot(ctx context.Context, subscriberID uint, keyword, productName, productCode string) (*models.ItemSnapshot, error)
	PutSnapshot(ctx context.Context, snap *models.ItemSnapshot) error
}

// Monitor drives the poll cycle: read the active watchlist, fetch each
// keyword once, diff per subscriber, snapshot, notify.
type Monitor struct {
	log      *zap.Logger
	store    Storage
	search   Searcher
	dispatch Dispatcher

	checkInterval   time.Duration
	politenessDelay time.Duration
	maxResults      int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewMonitor(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, store *store.Store, extractor *inventory.Extractor, dispatcher *notify.Dispatcher) *Monitor {
	m := &Monitor{
		log:             log,
		store:           store,
		search:          extractor,
		dispatch:        dispatcher,
		checkInterval:   cfg.CheckInterval(),
		politenessDelay: cfg.PolitenessDelay(),
		maxResults:      cfg.MaxSearchResults,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go m.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Sugar().Info("Trying to stop monitor")
			m.Stop()
			return nil
		},
	})

	return m
}

func (m *Monitor) tickerWithImmediateTick(interval time.Duration) *time.Ticker {
	withImmediateTick := make(chan time.Time, 1)

	ticker := time.NewTicker(interval)
	tickerC := ticker.C
	go func() {
		withImmediateTick <- time.Now()
		for c := range tickerC {
			withImmediateTick <- c
		}
	}()

	ticker.C = withImmediateTick
	return ticker
}

func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		cancel()
		return
	}
	m.running = true
	m.cancel = cancel
	m.mu.Unlock()

	m.log.Sugar().Infow("Monitor started", "check_interval", m.checkInterval)

	ticker := m.tickerWithImmediateTick(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()

			m.log.Sugar().Info("Monitor stopped")
			return

		case cycleStartTime := <-ticker.C:
			m.runCycle(ctx, cycleStartTime.UTC())
		}
	}
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) CheckInterval() time.Duration {
	return m.checkInterval
}
