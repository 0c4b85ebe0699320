package lib

import (
	"context"
	"time"

	"github.com/wakewatch/wakewatch/config"
	"github.com/wakewatch/wakewatch/lib/models"
	"github.com/wakewatch/wakewatch/lib/monitor"
	"github.com/wakewatch/wakewatch/lib/notify"
	"github.com/wakewatch/wakewatch/lib/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service is the application facade behind the HTTP API.
type Service struct {
	cfg        *config.Config
	log        *zap.Logger
	store      *store.Store
	monitor    *monitor.Monitor
	dispatcher *notify.Dispatcher
}

func NewService(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, store *store.Store, monitor *monitor.Monitor, dispatcher *notify.Dispatcher) *Service {
	return &Service{cfg, log, store, monitor, dispatcher}
}

func (svc *Service) RegisterSubscriber(ctx context.Context, platform, identifier, username, firstName, lastName string) (*models.Subscriber, error) {
	return svc.store.RegisterSubscriber(ctx, platform, identifier, username, firstName, lastName)
}

func (svc *Service) AddKeyword(ctx context.Context, subscriberID uint, keyword string) (bool, error) {
	return svc.store.AddKeyword(ctx, subscriberID, keyword)
}

func (svc *Service) RemoveKeyword(ctx context.Context, subscriberID uint, keyword string) (bool, error) {
	return svc.store.RemoveKeyword(ctx, subscriberID, keyword)
}

func (svc *Service) ClearWatchlist(ctx context.Context, subscriberID uint) (int64, error) {
	return svc.store.ClearWatchlist(ctx, subscriberID)
}

func (svc *Service) Watchlist(ctx context.Context, subscriberID uint) ([]string, error) {
	return svc.store.Watchlist(ctx, subscriberID)
}

func (svc *Service) SendTestNotification(ctx context.Context, subscriberID uint) error {
	return svc.dispatcher.SendTest(ctx, subscriberID)
}

type Status struct {
	MonitorRunning bool
	CheckInterval  time.Duration
	WatchedEntries int64
	Keywords       []string
	Subscribers    int64
}

func (svc *Service) Status(ctx context.Context) (*Status, error) {
	entries, keywords, subscribers, err := svc.store.WatchlistStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		MonitorRunning: svc.monitor.Running(),
		CheckInterval:  svc.monitor.CheckInterval(),
		WatchedEntries: entries,
		Keywords:       keywords,
		Subscribers:    subscribers,
	}, nil
}
